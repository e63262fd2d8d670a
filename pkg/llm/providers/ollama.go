package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/flowgen-io/flowgen/pkg/llm"
)

// Ollama adapts a local Ollama server to llm.Provider. No API key is
// required; BaseURL points at the server when it is not on the default port.
type Ollama struct {
	client *ollama.LLM
	config llm.StageConfig
}

// NewOllama creates an Ollama-backed provider.
func NewOllama(cfg llm.StageConfig) (*Ollama, error) {
	opts := []ollama.Option{}

	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &Ollama{client: client, config: cfg}, nil
}

func (p *Ollama) Name() string {
	return "ollama"
}

func (p *Ollama) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.client.GenerateContent(ctx, toMessages(req), callOptions(req)...)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %s", llm.ErrProviderUnavailable, err.Error())
	}

	return fromResponse(resp, req.Model), nil
}
