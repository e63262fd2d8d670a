package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/llm/providers"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/prompts"
)

// NewStageExecutors builds the four pipeline stage executors from per-stage
// provider configurations. Every stage name in configs must be one of the
// known pipeline stages; missing stages fall back to the planner
// configuration so a single provider flag configures the whole pipeline.
func NewStageExecutors(
	ctx context.Context,
	configs map[string]llm.StageConfig,
	templates *prompts.Loader,
	traces persistence.StageResultRepository,
	notifier pipeline.CredentialNotifier,
	logger *slog.Logger,
) ([]*pipeline.StageExecutor, error) {
	defaults, ok := configs[models.StagePlanner]
	if !ok {
		return nil, fmt.Errorf("missing provider configuration for stage %q", models.StagePlanner)
	}

	executors := make([]*pipeline.StageExecutor, 0, len(models.StageNames))

	for i, name := range models.StageNames {
		cfg, ok := configs[name]
		if !ok {
			cfg = defaults
		}

		provider, err := providers.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", name, err)
		}

		executorCfg := pipeline.ExecutorConfig{
			Number:    i + 1,
			Name:      name,
			LLM:       cfg,
			Provider:  provider,
			Templates: templates,
			Traces:    traces,
			Notifier:  notifier,
			Logger:    logger,
		}
		if name == models.StageFinalizer {
			executorCfg.Fallback = pipeline.FinalizerFallback
		}

		executors = append(executors, pipeline.NewStageExecutor(executorCfg))
	}

	return executors, nil
}
