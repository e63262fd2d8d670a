// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow record was not found by the
	// given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyExists indicates a workflow record with the same
	// identifier already exists.
	ErrWorkflowAlreadyExists = errors.New("workflow already exists")

	// ErrStageResultNotFound indicates a stage result was not found.
	ErrStageResultNotFound = errors.New("stage result not found")

	// ErrStageResultImmutable indicates an attempt to rewrite a stage result
	// that already reached a terminal status.
	ErrStageResultImmutable = errors.New("stage result already terminal")

	// ErrAutomationNotFound indicates an automation record was not found.
	ErrAutomationNotFound = errors.New("automation not found")
)

// WorkflowError wraps workflow-record errors with operation context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save")
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// StageResultError wraps trace-store errors with operation context.
type StageResultError struct {
	Op         string
	WorkflowID string
	StageName  string
	Err        error
}

func (e *StageResultError) Error() string {
	return fmt.Sprintf("%s operation failed for stage %s of workflow %s: %v", e.Op, e.StageName, e.WorkflowID, e.Err)
}

func (e *StageResultError) Unwrap() error {
	return e.Err
}

func (e *StageResultError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsWorkflowNotFound checks if an error indicates a workflow record was not
// found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsAutomationNotFound checks if an error indicates an automation record was
// not found.
func IsAutomationNotFound(err error) bool {
	return errors.Is(err, ErrAutomationNotFound)
}
