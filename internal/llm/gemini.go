package llm

import (
	"context"
	"errors"
	"fmt"

	genai "google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type Gemini struct {
	client *genai.Client
	model  string
	opts   Options
}

func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	conf := &genai.ClientConfig{APIKey: opts.APIKey, Backend: genai.BackendGeminiAPI}
	if opts.URL != "" {
		conf.HTTPOptions = genai.HTTPOptions{BaseURL: opts.URL}
	}
	c, err := genai.NewClient(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model, opts: opts}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := withTimeout(ctx, g.opts.Timeout)
	defer cancel()

	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(maxTokens),
	})
	if err != nil {
		return "", &UpstreamError{Provider: ProviderGemini, Err: fmt.Errorf("gemini API call failed: %w", err)}
	}
	if res == nil || len(res.Candidates) == 0 {
		return "", &UpstreamError{Provider: ProviderGemini, Err: fmt.Errorf("%w: no candidates", errMalformed)}
	}
	return res.Text(), nil
}
