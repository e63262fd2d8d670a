package models

import (
	"encoding/json"
	"time"
)

// StageStatus defines the lifecycle of a single pipeline stage execution.
type StageStatus string

const (
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// Pipeline stage names, in execution order.
const (
	StagePlanner   = "planner"
	StageRefiner   = "refiner"
	StageOptimizer = "optimizer"
	StageFinalizer = "finalizer"
)

// StageNames lists the four stages in execution order.
var StageNames = []string{StagePlanner, StageRefiner, StageOptimizer, StageFinalizer}

// StageResult is the execution-trace record for one pipeline stage. It is
// written once at stage start (running) and exactly once more with a terminal
// status, and is immutable after that.
type StageResult struct {
	ID              string          `json:"id"`
	WorkflowID      string          `json:"workflow_id"`
	StageNumber     int             `json:"stage_number"` // 1-4
	StageName       string          `json:"stage_name"`
	Input           json.RawMessage `json:"input,omitempty"`
	Output          json.RawMessage `json:"output,omitempty"` // Present only on completed
	Status          StageStatus     `json:"status"`
	ErrorMessage    string          `json:"error_message,omitempty"` // Present only on failed
	ExecutionTimeMS int64           `json:"execution_time_ms"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// Terminal reports whether the stage result reached a final status.
func (r *StageResult) Terminal() bool {
	return r.Status == StageStatusCompleted || r.Status == StageStatusFailed
}

// PipelineRun aggregates one orchestration invocation: the owning workflow
// record id, the per-stage trace, and the terminal outcome. A run is owned
// exclusively by the orchestrator for the duration of one invocation.
type PipelineRun struct {
	WorkflowID       string            `json:"workflow_id"`
	UserID           string            `json:"user_id"`
	DryRun           bool              `json:"dry_run"`
	Status           WorkflowStatus    `json:"status"`
	Stages           []*StageResult    `json:"stages"`
	Document         *WorkflowDocument `json:"document,omitempty"`
	Simulation       *DryRunResult     `json:"simulation,omitempty"`
	ErrorStage       string            `json:"error_stage,omitempty"`
	ErrorMessage     string            `json:"error_message,omitempty"`
	ValidationErrors []string          `json:"validation_errors,omitempty"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
}

// Succeeded reports whether the run produced a validated document.
func (r *PipelineRun) Succeeded() bool {
	return r.Status == WorkflowStatusCompleted || r.Status == WorkflowStatusDryRunComplete
}
