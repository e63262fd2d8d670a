package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/flowgen-io/flowgen/pkg/llm"
)

// GoogleAI adapts the Gemini API to llm.Provider.
type GoogleAI struct {
	client *googleai.GoogleAI
	config llm.StageConfig
}

// NewGoogleAI creates a Gemini-backed provider from an explicit stage
// configuration.
func NewGoogleAI(ctx context.Context, cfg llm.StageConfig) (*GoogleAI, error) {
	opts := []googleai.Option{
		googleai.WithAPIKey(cfg.APIKey),
	}

	if cfg.Model != "" {
		opts = append(opts, googleai.WithDefaultModel(cfg.Model))
	}

	client, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create googleai client: %w", err)
	}

	return &GoogleAI{client: client, config: cfg}, nil
}

func (p *GoogleAI) Name() string {
	return "googleai"
}

func (p *GoogleAI) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.client.GenerateContent(ctx, toMessages(req), callOptions(req)...)
	if err != nil {
		return nil, fmt.Errorf("%w: googleai: %s", llm.ErrProviderUnavailable, err.Error())
	}

	return fromResponse(resp, req.Model), nil
}
