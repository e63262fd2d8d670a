// Package pipeline implements the four-stage generation pipeline: planner,
// refiner, optimizer, and finalizer executors run in strict sequence under a
// single orchestrator that owns the run's terminal state.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowgen-io/flowgen/pkg/dryrun"
	"github.com/flowgen-io/flowgen/pkg/eventbus"
	"github.com/flowgen-io/flowgen/pkg/events"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/otelhelper"
	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/validation"
)

// RunRequest carries one generation invocation.
type RunRequest struct {
	Prompt string
	UserID string
	DryRun bool
}

// Orchestrator runs the four stages in sequence, threading each stage's
// output into the next stage's input. Orchestrators are stateless between
// runs; concurrent runs share nothing but the durable stores.
type Orchestrator struct {
	stages      []*StageExecutor
	workflows   persistence.WorkflowRepository
	automations persistence.AutomationRepository
	bus         eventbus.EventBus
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewOrchestrator wires an orchestrator over four stage executors. The event
// bus may be nil; lifecycle events are then skipped.
func NewOrchestrator(
	stages []*StageExecutor,
	workflows persistence.WorkflowRepository,
	automations persistence.AutomationRepository,
	bus eventbus.EventBus,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		stages:      stages,
		workflows:   workflows,
		automations: automations,
		bus:         bus,
		logger:      logger.With("module", "pipeline"),
		tracer:      otel.Tracer("flowgen/pipeline"),
	}
}

// Run executes one full pipeline invocation. Pipeline failures (stage
// failure, validation failure) are reported inside the returned run, not as
// an error; the error return covers pre-flight problems only, such as the
// placeholder record failing to persist.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (run *models.PipelineRun, err error) {
	workflowID := uuid.New().String()

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "pipeline.run",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.OwnerKey, req.UserID),
		attribute.Bool(otelhelper.DryRunKey, req.DryRun),
	)
	defer span.End()

	record := &models.WorkflowRecord{
		ID:     workflowID,
		Owner:  req.UserID,
		Prompt: req.Prompt,
		Status: models.WorkflowStatusProcessing,
	}

	if err := o.workflows.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create workflow record: %w", err)
	}

	run = &models.PipelineRun{
		WorkflowID: workflowID,
		UserID:     req.UserID,
		DryRun:     req.DryRun,
		Status:     models.WorkflowStatusProcessing,
		Stages:     []*models.StageResult{},
		StartedAt:  time.Now().UTC(),
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			o.logger.ErrorContext(ctx, "Pipeline panicked",
				"workflow_id", workflowID,
				"panic", recovered)

			o.failRun(ctx, run, record, run.ErrorStage,
				fmt.Errorf("orchestration failed unexpectedly: %v", recovered))
		}

		run.FinishedAt = time.Now().UTC()
		o.publishFinished(ctx, run)
	}()

	o.publish(ctx, events.GenerationStarted{
		BaseEvent: o.baseEvent(events.GenerationStartedEvent, workflowID),
		UserID:    req.UserID,
		DryRun:    req.DryRun,
	})

	input := map[string]any{"prompt": req.Prompt}

	for _, stage := range o.stages {
		// Cooperative cancellation between stages; a stage in flight is
		// bounded by its own call timeout.
		if ctx.Err() != nil {
			o.failRun(ctx, run, record, stage.Name(), fmt.Errorf("run canceled: %w", ctx.Err()))

			return run, nil
		}

		run.ErrorStage = stage.Name()

		o.publish(ctx, events.StageStarted{
			BaseEvent:   o.baseEvent(events.StageStartedEvent, workflowID),
			StageNumber: stage.Number(),
			StageName:   stage.Name(),
		})

		result, outcome := stage.Execute(ctx, workflowID, input)
		run.Stages = append(run.Stages, result)

		o.publish(ctx, events.StageFinished{
			BaseEvent:       o.baseEvent(events.StageFinishedEvent, workflowID),
			StageNumber:     stage.Number(),
			StageName:       stage.Name(),
			Status:          result.Status,
			Degraded:        outcome.Kind == OutcomeDegraded,
			ExecutionTimeMS: result.ExecutionTimeMS,
			ErrorMessage:    result.ErrorMessage,
		})

		if !outcome.Usable() {
			o.failRun(ctx, run, record, stage.Name(), outcome.Err)

			return run, nil
		}

		input = outcome.Output
	}

	run.ErrorStage = ""

	document, err := documentFromOutput(input)
	if err != nil {
		o.failRun(ctx, run, record, models.StageFinalizer,
			fmt.Errorf("finalizer output is not a workflow document: %w", err))

		return run, nil
	}

	report := validation.Validate(document)
	if !report.IsValid {
		// The partial artifact is retained for inspection but never marked
		// deployable.
		run.Status = models.WorkflowStatusValidationFailed
		run.ErrorStage = "validation"
		run.ValidationErrors = report.Errors
		run.Document = document
		run.ErrorMessage = "workflow document failed validation"

		record.Status = models.WorkflowStatusValidationFailed
		record.Document = document
		record.ValidationErrors = report.Errors
		o.updateRecord(ctx, record)

		return run, nil
	}

	run.Document = document
	record.Document = document

	if req.DryRun {
		run.Status = models.WorkflowStatusDryRunComplete
		run.Simulation = dryrun.Simulate(document)
	} else {
		run.Status = models.WorkflowStatusCompleted
	}

	record.Status = run.Status
	o.updateRecord(ctx, record)

	automation := &models.Automation{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		Owner:      req.UserID,
		Name:       document.Name,
		Document:   document,
	}
	if err := o.automations.Create(ctx, automation); err != nil {
		o.logger.ErrorContext(ctx, "Failed to create automation record",
			"workflow_id", workflowID,
			"error", err)
	}

	o.logger.InfoContext(ctx, "Pipeline completed",
		"workflow_id", workflowID,
		"status", run.Status,
		"stages", len(run.Stages))

	return run, nil
}

func (o *Orchestrator) failRun(ctx context.Context, run *models.PipelineRun, record *models.WorkflowRecord, stage string, cause error) {
	if run.Status == models.WorkflowStatusFailed {
		return
	}

	run.Status = models.WorkflowStatusFailed
	run.ErrorStage = stage
	run.ErrorMessage = cause.Error()

	otelhelper.SetError(trace.SpanFromContext(ctx), cause,
		attribute.String(otelhelper.StageNameKey, stage))

	record.Status = models.WorkflowStatusFailed
	o.updateRecord(ctx, record)

	o.logger.ErrorContext(ctx, "Pipeline failed",
		"workflow_id", run.WorkflowID,
		"stage", stage,
		"error", cause)
}

func (o *Orchestrator) updateRecord(ctx context.Context, record *models.WorkflowRecord) {
	if err := o.workflows.Update(ctx, record); err != nil {
		o.logger.ErrorContext(ctx, "Failed to update workflow record",
			"workflow_id", record.ID,
			"error", err)
	}
}

func (o *Orchestrator) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	id := ""
	if o.bus != nil {
		id = o.bus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

func (o *Orchestrator) publish(ctx context.Context, event eventbus.Event) {
	if o.bus == nil {
		return
	}

	var workflowID string
	switch e := event.(type) {
	case events.GenerationStarted:
		workflowID = e.WorkflowID
	case events.StageStarted:
		workflowID = e.WorkflowID
	case events.StageFinished:
		workflowID = e.WorkflowID
	case events.GenerationFinished:
		workflowID = e.WorkflowID
	}

	if err := o.bus.Publish(ctx, workflowID, event); err != nil {
		o.logger.WarnContext(ctx, "Failed to publish lifecycle event", "error", err)
	}
}

func (o *Orchestrator) publishFinished(ctx context.Context, run *models.PipelineRun) {
	o.publish(ctx, events.GenerationFinished{
		BaseEvent:    o.baseEvent(events.GenerationFinishedEvent, run.WorkflowID),
		Status:       run.Status,
		ErrorStage:   run.ErrorStage,
		ErrorMessage: run.ErrorMessage,
		Duration:     run.FinishedAt.Sub(run.StartedAt),
	})
}

// documentFromOutput decodes the finalizer's structured output into the
// workflow document contract.
func documentFromOutput(output map[string]any) (*models.WorkflowDocument, error) {
	serialized, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}

	var document models.WorkflowDocument
	if err := json.Unmarshal(serialized, &document); err != nil {
		return nil, err
	}

	return &document, nil
}
