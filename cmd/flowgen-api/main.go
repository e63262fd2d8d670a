package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/flowgen-io/flowgen/pkg/cmd"
	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/log"
	"github.com/flowgen-io/flowgen/pkg/models"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowgen-api",
		Usage:                 "Generate and manage AI-built workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the prompt template store (optional)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.DurationFlag{
				Name:    "trace-retention",
				Usage:   "How long stage execution traces are kept",
				Value:   30 * 24 * time.Hour,
				Sources: cli.EnvVars("TRACE_RETENTION"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "llm-provider",
				Usage:   "Default LLM provider (openai, anthropic, googleai, ollama)",
				Value:   "openai",
				Sources: cli.EnvVars("LLM_PROVIDER"),
			},
			&cli.StringFlag{
				Name:    "llm-model",
				Usage:   "Default model for all stages",
				Sources: cli.EnvVars("LLM_MODEL"),
			},
			&cli.StringFlag{
				Name:    "llm-api-key",
				Usage:   "API key for the default provider",
				Sources: cli.EnvVars("LLM_API_KEY", "OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "llm-base-url",
				Usage:   "Base URL override for the default provider",
				Sources: cli.EnvVars("LLM_BASE_URL"),
			},
			&cli.FloatFlag{
				Name:    "llm-temperature",
				Usage:   "Sampling temperature for all stages",
				Value:   0.2,
				Sources: cli.EnvVars("LLM_TEMPERATURE"),
			},
			&cli.IntFlag{
				Name:    "llm-max-tokens",
				Usage:   "Completion token limit for all stages",
				Value:   4096,
				Sources: cli.EnvVars("LLM_MAX_TOKENS"),
			},
			&cli.StringFlag{
				Name:    "finalizer-model",
				Usage:   "Model override for the finalizer stage",
				Sources: cli.EnvVars("FINALIZER_MODEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing FlowGen API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				stageConfigs(command),
				command.String("redis-url"),
				command.Duration("trace-retention"),
			)

			if err := api.Start(ctx, command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

// stageConfigs expands the provider flags into a per-stage configuration.
// Every stage shares the default provider; the finalizer may carry a model
// override since it does the heaviest structured generation.
func stageConfigs(command *cli.Command) map[string]llm.StageConfig {
	base := llm.StageConfig{
		Provider:    command.String("llm-provider"),
		APIKey:      command.String("llm-api-key"),
		Model:       command.String("llm-model"),
		BaseURL:     command.String("llm-base-url"),
		Temperature: command.Float("llm-temperature"),
		MaxTokens:   command.Int("llm-max-tokens"),
	}

	configs := make(map[string]llm.StageConfig, len(models.StageNames))
	for _, name := range models.StageNames {
		configs[name] = base
	}

	if override := command.String("finalizer-model"); override != "" {
		cfg := configs[models.StageFinalizer]
		cfg.Model = override
		configs[models.StageFinalizer] = cfg
	}

	return configs
}
