// Package services provides the business layer over the generation pipeline
// and its stores.
package services

import (
	"errors"
	"fmt"

	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrPromptRequired = errors.New("prompt is required")
	ErrUserIDRequired = errors.New("user ID cannot be empty")
	ErrInvalidRequest = errors.New("invalid request")

	// Generation outcome errors (422 Unprocessable Entity).
	ErrValidationFailed = errors.New("generated document failed validation")

	// Upstream errors surfaced from the pipeline (502 Bad Gateway).
	ErrCredentialMissing = pipeline.ErrCredentialMissing
	ErrProviderFailure   = llm.ErrProviderUnavailable

	// Resource state errors.
	ErrDocumentNotReady = errors.New("workflow has no finalized document")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a request problem that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrPromptRequired) ||
		errors.Is(err, ErrUserIDRequired) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsCredentialError checks if an error is a missing provider credential.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrCredentialMissing)
}

// IsProviderError checks if an error came from an unreachable or failing
// model provider.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProviderFailure)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
