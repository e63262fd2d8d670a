package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/flowgen-io/flowgen/pkg/llm"
)

// OpenAI adapts OpenAI-compatible chat-completion endpoints to llm.Provider.
type OpenAI struct {
	client *openai.LLM
	config llm.StageConfig
}

// NewOpenAI creates an OpenAI-backed provider from an explicit stage
// configuration. The API key must already be resolved by the caller.
func NewOpenAI(cfg llm.StageConfig) (*OpenAI, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
	}

	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return &OpenAI{client: client, config: cfg}, nil
}

func (p *OpenAI) Name() string {
	return "openai"
}

func (p *OpenAI) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.client.GenerateContent(ctx, toMessages(req), callOptions(req)...)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %s", llm.ErrProviderUnavailable, err.Error())
	}

	return fromResponse(resp, req.Model), nil
}
