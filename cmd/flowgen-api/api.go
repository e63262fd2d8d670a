// Package main provides the FlowGen API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/flowgen-io/flowgen/pkg/cmd"
	"github.com/flowgen-io/flowgen/pkg/eventbus"
	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/prompts"
	"github.com/flowgen-io/flowgen/pkg/services"
	"github.com/flowgen-io/flowgen/pkg/web"
)

type API struct {
	logger         *slog.Logger
	persistence    persistence.Persistence
	eventBus       eventbus.EventBus
	stages         map[string]llm.StageConfig
	redisURL       string
	traceRetention time.Duration
	validate       *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	stages map[string]llm.StageConfig,
	redisURL string,
	traceRetention time.Duration,
) *API {
	return &API{
		logger:         logger,
		persistence:    persistence,
		eventBus:       eventBus,
		stages:         stages,
		redisURL:       redisURL,
		traceRetention: traceRetention,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App(ctx context.Context) (*fiber.App, error) {
	templates := prompts.NewLoader(a.promptStore(), a.logger)
	notifier := pipeline.NewEventBusNotifier(a.eventBus, a.logger)

	executors, err := cmd.NewStageExecutors(
		ctx,
		a.stages,
		templates,
		a.persistence.StageResultRepository(),
		notifier,
		a.logger,
	)
	if err != nil {
		return nil, err
	}

	orchestrator := pipeline.NewOrchestrator(
		executors,
		a.persistence.WorkflowRepository(),
		a.persistence.AutomationRepository(),
		a.eventBus,
		a.logger,
	)

	generationService := services.NewGeneration(orchestrator, a.persistence, a.logger)
	handlers := web.NewAPIHandlers(generationService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowGen API")
	})

	app.Post("/generations", handlers.CreateGeneration)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Get("/:id", handlers.GetWorkflow)
	w.Get("/:id/document", handlers.GetWorkflowDocument)
	w.Get("/:id/stages", handlers.GetWorkflowStages)
	w.Post("/:id/validate", handlers.ValidateWorkflow)
	w.Post("/:id/dry-run", handlers.DryRunWorkflow)

	app.Get("/automations", handlers.GetAutomations)
	app.Get("/health", handlers.HealthCheck)

	return app, nil
}

func (a *API) Start(ctx context.Context, port int) error {
	app, err := a.App(ctx)
	if err != nil {
		return err
	}

	retention := a.startRetentionJob(ctx)
	defer retention.Stop()

	return app.Listen(":" + strconv.Itoa(port))
}

func (a *API) promptStore() prompts.Store {
	if a.redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(a.redisURL)
	if err != nil {
		a.logger.Error("Invalid Redis URL, using built-in prompt templates", "error", err)

		return nil
	}

	return prompts.NewRedisStore(redis.NewClient(opts))
}

// startRetentionJob purges stage execution traces older than the configured
// retention window once per hour.
func (a *API) startRetentionJob(ctx context.Context) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("@hourly", func() {
		purged, err := a.persistence.StageResultRepository().PurgeOlderThan(ctx, a.traceRetention)
		if err != nil {
			a.logger.ErrorContext(ctx, "Failed to purge stage traces", "error", err)

			return
		}

		if purged > 0 {
			a.logger.InfoContext(ctx, "Purged stage traces",
				"count", purged,
				"retention", a.traceRetention.String())
		}
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to schedule trace retention job", "error", err)
	}

	c.Start()

	return c
}
