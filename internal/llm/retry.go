package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// IsRetryable reports whether err is a transient upstream failure.
func IsRetryable(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.Retryable()
}

type retrier struct {
	next     Completer
	attempts int
	backoff  func(int) time.Duration
	log      *zap.Logger
}

// WithRetry retries transient failures of c up to retries extra times. With
// retries <= 0 it returns c unchanged.
func WithRetry(c Completer, retries int, log *zap.Logger) Completer {
	if retries <= 0 {
		return c
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &retrier{next: c, attempts: retries + 1, backoff: Backoff, log: log}
}

func (r *retrier) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var lastErr error
	for attempt := range r.attempts {
		var out string
		out, lastErr = r.next.Complete(ctx, prompt, maxTokens)
		if lastErr == nil || !IsRetryable(lastErr) || attempt == r.attempts-1 {
			return out, lastErr
		}
		r.log.Warn("retryable completion error", zap.Int("attempt", attempt), zap.Error(lastErr))
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return "", &UpstreamError{Err: ctx.Err()}
		}
	}
	return "", lastErr
}
