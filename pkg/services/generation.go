package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowgen-io/flowgen/pkg/dryrun"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/validation"
)

// ErrWorkflowNotFound is returned when a workflow record is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// GenerateRequest carries one generation invocation from the caller.
type GenerateRequest struct {
	Prompt string `json:"prompt"  validate:"required"`
	UserID string `json:"user_id" validate:"required"`
	DryRun bool   `json:"dry_run"`
}

// Generation drives the pipeline and exposes the read operations over its
// results.
type Generation struct {
	orchestrator *pipeline.Orchestrator
	persistence  persistence.Persistence
	logger       *slog.Logger
}

// NewGeneration creates a new generation service.
func NewGeneration(orchestrator *pipeline.Orchestrator, p persistence.Persistence, logger *slog.Logger) *Generation {
	return &Generation{
		orchestrator: orchestrator,
		persistence:  p,
		logger:       logger.With("module", "generation_service"),
	}
}

// Generate runs the full pipeline for one prompt. Pipeline-level failures
// are carried inside the returned run; the error return covers request
// problems and pre-flight failures.
func (g *Generation) Generate(ctx context.Context, req GenerateRequest) (*models.PipelineRun, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewValidationError("Generate", "prompt_required", "prompt is required", ErrPromptRequired)
	}

	if strings.TrimSpace(req.UserID) == "" {
		return nil, NewValidationError("Generate", "user_id_required", "user ID cannot be empty", ErrUserIDRequired)
	}

	g.logger.InfoContext(ctx, "Starting generation",
		"user_id", req.UserID,
		"dry_run", req.DryRun)

	return g.orchestrator.Run(ctx, pipeline.RunRequest{
		Prompt: req.Prompt,
		UserID: req.UserID,
		DryRun: req.DryRun,
	})
}

// Get returns one workflow record.
func (g *Generation) Get(ctx context.Context, id string) (*models.WorkflowRecord, error) {
	return g.persistence.WorkflowRepository().GetByID(ctx, id)
}

// ListByOwner returns an owner's workflow records, newest first.
func (g *Generation) ListByOwner(ctx context.Context, owner string) ([]*models.WorkflowRecord, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, NewValidationError("ListByOwner", "user_id_required", "user ID cannot be empty", ErrUserIDRequired)
	}

	return g.persistence.WorkflowRepository().ListByOwner(ctx, owner)
}

// Document returns the finalized document of a workflow for download.
func (g *Generation) Document(ctx context.Context, id string) (*models.WorkflowDocument, error) {
	record, err := g.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.Document == nil || !record.Deployable() {
		return nil, &ServiceError{
			Op:      "Document",
			Code:    "document_not_ready",
			Message: "workflow " + id + " has no finalized document",
			Err:     ErrDocumentNotReady,
		}
	}

	return record.Document, nil
}

// Validate re-runs the validator over a stored workflow document.
func (g *Generation) Validate(ctx context.Context, id string) (models.ValidationReport, error) {
	record, err := g.Get(ctx, id)
	if err != nil {
		return models.ValidationReport{}, err
	}

	return validation.Validate(record.Document), nil
}

// DryRun re-runs the simulator over a stored workflow document.
func (g *Generation) DryRun(ctx context.Context, id string) (*models.DryRunResult, error) {
	record, err := g.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return dryrun.Simulate(record.Document), nil
}

// StageResults returns the execution trace of one workflow.
func (g *Generation) StageResults(ctx context.Context, id string) ([]*models.StageResult, error) {
	if _, err := g.Get(ctx, id); err != nil {
		return nil, err
	}

	return g.persistence.StageResultRepository().ListByWorkflow(ctx, id)
}

// Automations returns an owner's durable automation records.
func (g *Generation) Automations(ctx context.Context, owner string) ([]*models.Automation, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, NewValidationError("Automations", "user_id_required", "user ID cannot be empty", ErrUserIDRequired)
	}

	return g.persistence.AutomationRepository().ListByOwner(ctx, owner)
}

// HealthCheck checks the health of the persistence layer.
func (g *Generation) HealthCheck(ctx context.Context) (string, bool) {
	if g.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := g.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
