package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const defaultCompletionModel = "llama-3"

var errMalformed = errors.New("malformed response envelope")

// HTTPCompleter calls an OpenAI-compatible text completion endpoint directly,
// e.g. a hosted Llama 3 deployment.
type HTTPCompleter struct {
	url        string
	apiKey     string
	model      string
	opts       Options
	httpClient *http.Client
}

func NewHTTPCompleter(opts Options) *HTTPCompleter {
	model := opts.Model
	if model == "" {
		model = defaultCompletionModel
	}
	return &HTTPCompleter{
		url:        opts.URL,
		apiKey:     opts.APIKey,
		model:      model,
		opts:       opts,
		httpClient: &http.Client{},
	}
}

type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Text *string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := withTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(completionRequest{Model: c.model, Prompt: prompt, MaxTokens: maxTokens})
	if err != nil {
		return "", c.fail(0, fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", c.fail(resp.StatusCode, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail(resp.StatusCode, fmt.Errorf("%s", truncate(string(respBody), 200)))
	}

	var out completionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", c.fail(resp.StatusCode, fmt.Errorf("%w: %v", errMalformed, err))
	}
	if out.Error != nil {
		return "", c.fail(resp.StatusCode, fmt.Errorf("%s: %s", out.Error.Type, out.Error.Message))
	}
	if len(out.Choices) == 0 || out.Choices[0].Text == nil {
		return "", c.fail(resp.StatusCode, fmt.Errorf("%w: missing choices[0].text", errMalformed))
	}
	return *out.Choices[0].Text, nil
}

func (c *HTTPCompleter) fail(status int, err error) error {
	return &UpstreamError{Provider: ProviderCompletion, StatusCode: status, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
