package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/prompts"
)

// FallbackFunc builds a substitute output when a stage's provider call
// fails. Only the finalizer carries one; it synthesizes a minimal but valid
// document so the user still receives an importable artifact.
type FallbackFunc func(input map[string]any, cause error) map[string]any

// ExecutorConfig wires one stage executor.
type ExecutorConfig struct {
	Number    int
	Name      string
	LLM       llm.StageConfig
	Provider  llm.Provider
	Templates *prompts.Loader
	Traces    persistence.StageResultRepository
	Notifier  CredentialNotifier
	Logger    *slog.Logger
	Fallback  FallbackFunc
}

// StageExecutor runs one pipeline stage: prompt assembly, provider call,
// structured extraction, and the two trace-store writes.
type StageExecutor struct {
	number    int
	name      string
	config    llm.StageConfig
	provider  llm.Provider
	templates *prompts.Loader
	traces    persistence.StageResultRepository
	notifier  CredentialNotifier
	logger    *slog.Logger
	fallback  FallbackFunc
}

// NewStageExecutor creates a stage executor from its configuration.
func NewStageExecutor(cfg ExecutorConfig) *StageExecutor {
	return &StageExecutor{
		number:    cfg.Number,
		name:      cfg.Name,
		config:    cfg.LLM,
		provider:  cfg.Provider,
		templates: cfg.Templates,
		traces:    cfg.Traces,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger.With("module", "pipeline", "stage", cfg.Name),
		fallback:  cfg.Fallback,
	}
}

// Name returns the stage name.
func (e *StageExecutor) Name() string {
	return e.name
}

// Number returns the 1-based stage position.
func (e *StageExecutor) Number() int {
	return e.number
}

// Execute runs the stage against the upstream input. It always returns the
// terminal trace snapshot; the outcome tells the orchestrator whether the
// output can feed the next stage. Exactly two trace writes happen per call,
// one running snapshot and one terminal snapshot.
func (e *StageExecutor) Execute(ctx context.Context, workflowID string, input map[string]any) (*models.StageResult, StageOutcome) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		inputJSON = []byte(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
	}

	result := &models.StageResult{
		ID:          uuid.New().String(),
		WorkflowID:  workflowID,
		StageNumber: e.number,
		StageName:   e.name,
		Input:       inputJSON,
		Status:      models.StageStatusRunning,
		CreatedAt:   time.Now().UTC(),
	}

	if err := e.traces.Append(ctx, result); err != nil {
		e.logger.WarnContext(ctx, "Failed to write running trace snapshot",
			"workflow_id", workflowID,
			"error", err)
	}

	started := time.Now()
	outcome := e.run(ctx, workflowID, input)
	result.ExecutionTimeMS = time.Since(started).Milliseconds()

	completedAt := time.Now().UTC()
	result.CompletedAt = &completedAt

	if outcome.Usable() {
		result.Status = models.StageStatusCompleted

		outputJSON, err := json.Marshal(outcome.Output)
		if err != nil {
			e.logger.ErrorContext(ctx, "Failed to marshal stage output", "error", err)
		} else {
			result.Output = outputJSON
		}
	} else {
		result.Status = models.StageStatusFailed
		result.ErrorMessage = outcome.Err.Error()
	}

	if err := e.traces.Finish(ctx, result); err != nil {
		e.logger.WarnContext(ctx, "Failed to write terminal trace snapshot",
			"workflow_id", workflowID,
			"error", err)
	}

	return result, outcome
}

func (e *StageExecutor) run(ctx context.Context, workflowID string, input map[string]any) StageOutcome {
	if !e.config.Configured() {
		e.notifier.NotifyCredentialGap(ctx, CredentialGap{
			Service:        e.config.Provider,
			CredentialName: e.config.CredentialName(),
			WorkflowID:     workflowID,
			Stage:          e.name,
		})

		return Failed(fmt.Errorf("%w: stage %s requires %s",
			ErrCredentialMissing, e.name, e.config.CredentialName()))
	}

	template := e.templates.Template(ctx, e.name)

	prompt, err := prompts.Render(template, input)
	if err != nil {
		return Failed(fmt.Errorf("failed to assemble prompt for stage %s: %w", e.name, err))
	}

	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout())
	defer cancel()

	response, err := e.provider.Complete(callCtx, llm.CompletionRequest{
		Model:       e.config.Model,
		Prompt:      prompt,
		Temperature: e.config.Temperature,
		MaxTokens:   e.config.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: stage %s timed out after %s",
				llm.ErrProviderUnavailable, e.name, e.config.CallTimeout())
		}

		if e.fallback != nil {
			e.logger.WarnContext(ctx, "Provider call failed, using fallback output",
				"workflow_id", workflowID,
				"error", err)

			return Degraded(e.fallback(input, err))
		}

		return Failed(err)
	}

	output, err := llm.ExtractObject(response.Content)
	if err != nil {
		// Losing structure is not fatal: carry the upstream data forward
		// with a partial marker so later stages can still work with it.
		e.logger.WarnContext(ctx, "Structured extraction failed, continuing degraded",
			"workflow_id", workflowID,
			"error", err)

		return Degraded(degradedOutput(input, response.Content))
	}

	e.logger.DebugContext(ctx, "Stage completed",
		"workflow_id", workflowID,
		"model", response.Model,
		"total_tokens", response.Usage.TotalTokens)

	return Completed(output)
}

// degradedOutput merges the upstream input with a partial-status marker and
// the raw model text.
func degradedOutput(input map[string]any, raw string) map[string]any {
	output := make(map[string]any, len(input)+3)
	for k, v := range input {
		output[k] = v
	}

	output["status"] = "partial"
	output["note"] = "structured output could not be extracted from the model response"
	output["raw_output"] = raw

	return output
}
