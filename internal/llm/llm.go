package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUpstream classifies every failure of the remote completion service.
var ErrUpstream = errors.New("upstream service error")

var ErrUnknownProvider = errors.New("llm: unknown provider")

// Completer sends one prompt and returns the completion text.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type Provider string

const (
	// ProviderCompletion is a raw OpenAI-compatible /v1/completions endpoint.
	ProviderCompletion Provider = "completion"
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
)

// UpstreamError wraps a failed completion call. It matches ErrUpstream.
type UpstreamError struct {
	Provider   Provider
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", ErrUpstream, e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrUpstream, e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Retryable reports whether the failure is transient: rate limiting or a
// server-side error.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Options struct {
	Provider Provider
	URL      string
	APIKey   string
	Model    string
	// Timeout bounds each request; <= 0 means no timeout.
	Timeout time.Duration
}

// New builds the completer for opts.Provider.
func New(ctx context.Context, opts Options) (Completer, error) {
	switch opts.Provider {
	case ProviderCompletion:
		return NewHTTPCompleter(opts), nil
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderGemini:
		g, err := NewGemini(ctx, opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
