// Package web provides HTTP request and response types for the generation API.
package web

import "github.com/flowgen-io/flowgen/pkg/models"

// GenerateWorkflowRequest is the request body for starting a generation.
type GenerateWorkflowRequest struct {
	Prompt string `json:"prompt"  validate:"required,min=3"`
	UserID string `json:"user_id" validate:"required"`
	DryRun bool   `json:"dry_run"`
}

// StageSummary is the per-stage slice of a generation response.
type StageSummary struct {
	StageNumber     int                `json:"stage_number"`
	StageName       string             `json:"stage_name"`
	Status          models.StageStatus `json:"status"`
	ExecutionTimeMS int64              `json:"execution_time_ms"`
	ErrorMessage    string             `json:"error_message,omitempty"`
}

// GenerationSuccessResponse is returned when a run reaches a deployable
// terminal state.
type GenerationSuccessResponse struct {
	WorkflowID       string                   `json:"workflow_id"`
	Status           models.WorkflowStatus    `json:"status"`
	WorkflowDocument *models.WorkflowDocument `json:"workflow_document"`
	PerStageResults  []StageSummary           `json:"per_stage_results"`
	Simulation       *models.DryRunResult     `json:"simulation,omitempty"`
}

// GenerationFailureResponse is returned when a run fails or its document
// does not validate. ValidationErrors is present only for validation
// failures.
type GenerationFailureResponse struct {
	WorkflowID       string                `json:"workflow_id,omitempty"`
	Status           models.WorkflowStatus `json:"status"`
	ErrorStage       string                `json:"error_stage"`
	ErrorMessage     string                `json:"error_message"`
	ValidationErrors []string              `json:"validation_errors,omitempty"`
	PerStageResults  []StageSummary        `json:"per_stage_results"`
}

func stageSummaries(stages []*models.StageResult) []StageSummary {
	summaries := make([]StageSummary, 0, len(stages))
	for _, stage := range stages {
		summaries = append(summaries, StageSummary{
			StageNumber:     stage.StageNumber,
			StageName:       stage.StageName,
			Status:          stage.Status,
			ExecutionTimeMS: stage.ExecutionTimeMS,
			ErrorMessage:    stage.ErrorMessage,
		})
	}

	return summaries
}
