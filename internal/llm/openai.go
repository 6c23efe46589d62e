package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a helpful assistant."

type OpenAI struct {
	client *openai.Client
	model  string
	opts   Options
}

// NewOpenAI builds a chat-completion client. opts.URL overrides the API base
// URL (it must include the version prefix, e.g. https://host/v1).
func NewOpenAI(opts Options) *OpenAI {
	conf := openai.DefaultConfig(opts.APIKey)
	if opts.URL != "" {
		conf.BaseURL = opts.URL
	}
	model := opts.Model
	if model == "" {
		model = openai.GPT4
	}
	return &OpenAI{client: openai.NewClientWithConfig(conf), model: model, opts: opts}
}

func (p *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := withTimeout(ctx, p.opts.Timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &UpstreamError{Provider: ProviderOpenAI, StatusCode: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Provider: ProviderOpenAI, Err: fmt.Errorf("%w: no choices", errMalformed)}
	}
	return resp.Choices[0].Message.Content, nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
