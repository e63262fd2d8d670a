package providers

import (
	"context"
	"fmt"

	"github.com/flowgen-io/flowgen/pkg/llm"
)

// New builds the llm.Provider for a stage configuration. The mock provider
// is only reachable from tests and the dry-run CLI.
func New(ctx context.Context, cfg llm.StageConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg)
	case "anthropic":
		return NewAnthropic(cfg)
	case "googleai":
		return NewGoogleAI(ctx, cfg)
	case "ollama":
		return NewOllama(cfg)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}
