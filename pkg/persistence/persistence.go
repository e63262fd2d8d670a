// Package persistence provides the data storage abstraction for generated
// workflow records, stage execution traces, and automation records.
package persistence

import (
	"context"
	"time"

	"github.com/flowgen-io/flowgen/pkg/models"
)

// WorkflowRepository stores the records an orchestration run creates at
// start and updates with its terminal state.
type WorkflowRepository interface {
	Create(ctx context.Context, record *models.WorkflowRecord) error
	GetByID(ctx context.Context, id string) (*models.WorkflowRecord, error)
	Update(ctx context.Context, record *models.WorkflowRecord) error
	ListByOwner(ctx context.Context, owner string) ([]*models.WorkflowRecord, error)
	Delete(ctx context.Context, id string) error
}

// StageResultRepository is the write-only execution-trace store. The
// pipeline appends a running snapshot at stage start and finishes it with
// the terminal snapshot; it never reads traces back during a run.
type StageResultRepository interface {
	Append(ctx context.Context, result *models.StageResult) error
	Finish(ctx context.Context, result *models.StageResult) error
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.StageResult, error)
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// AutomationRepository stores the durable automation records created after
// successful generations.
type AutomationRepository interface {
	Create(ctx context.Context, automation *models.Automation) error
	GetByID(ctx context.Context, id string) (*models.Automation, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Automation, error)
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	StageResultRepository() StageResultRepository
	AutomationRepository() AutomationRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
