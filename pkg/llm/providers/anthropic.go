package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/flowgen-io/flowgen/pkg/llm"
)

// Anthropic adapts the Anthropic messages API to llm.Provider.
type Anthropic struct {
	client *anthropic.LLM
	config llm.StageConfig
}

// NewAnthropic creates an Anthropic-backed provider from an explicit stage
// configuration.
func NewAnthropic(cfg llm.StageConfig) (*Anthropic, error) {
	opts := []anthropic.Option{
		anthropic.WithToken(cfg.APIKey),
	}

	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}

	return &Anthropic{client: client, config: cfg}, nil
}

func (p *Anthropic) Name() string {
	return "anthropic"
}

func (p *Anthropic) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.client.GenerateContent(ctx, toMessages(req), callOptions(req)...)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %s", llm.ErrProviderUnavailable, err.Error())
	}

	return fromResponse(resp, req.Model), nil
}
