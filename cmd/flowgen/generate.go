package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowgen-io/flowgen/pkg/cmd"
	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/log"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/prompts"
	"github.com/flowgen-io/flowgen/pkg/services"
)

func runGenerate(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))
	logger := log.WithModule("cli")

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	stageConfig := llm.StageConfig{
		Provider: command.String("llm-provider"),
		APIKey:   command.String("llm-api-key"),
		Model:    command.String("llm-model"),
		BaseURL:  command.String("llm-base-url"),
	}

	configs := make(map[string]llm.StageConfig, len(models.StageNames))
	for _, name := range models.StageNames {
		configs[name] = stageConfig
	}

	executors, err := cmd.NewStageExecutors(
		ctx,
		configs,
		prompts.NewLoader(nil, logger),
		persistence.StageResultRepository(),
		pipeline.NewLogNotifier(logger),
		logger,
	)
	if err != nil {
		return err
	}

	orchestrator := pipeline.NewOrchestrator(
		executors,
		persistence.WorkflowRepository(),
		persistence.AutomationRepository(),
		nil,
		logger,
	)

	generation := services.NewGeneration(orchestrator, persistence, logger)

	run, err := generation.Generate(ctx, services.GenerateRequest{
		Prompt: command.String("prompt"),
		UserID: command.String("user"),
		DryRun: command.Bool("dry-run"),
	})
	if err != nil {
		return err
	}

	if !run.Succeeded() {
		reportFailure(run)

		return cli.Exit("", 1)
	}

	if run.Simulation != nil {
		encoded, err := json.MarshalIndent(run.Simulation, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode simulation result: %w", err)
		}

		fmt.Fprintln(os.Stderr, string(encoded))
	}

	return writeDocument(run.Document, command.String("output"))
}

func reportFailure(run *models.PipelineRun) {
	fmt.Fprintf(os.Stderr, "generation failed at %s: %s\n", run.ErrorStage, run.ErrorMessage)

	for _, msg := range run.ValidationErrors {
		fmt.Fprintf(os.Stderr, "  - %s\n", msg)
	}
}

func writeDocument(document *models.WorkflowDocument, path string) error {
	encoded, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow document: %w", err)
	}

	if path == "" {
		fmt.Println(string(encoded))

		return nil
	}

	if err := os.WriteFile(path, append(encoded, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write workflow document: %w", err)
	}

	return nil
}
