package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
)

// WorkflowRepository handles workflow-record database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
		id
	  , owner
	  , prompt
	  , status
	  , document
	  , validation_errors
	  , created_at
	  , updated_at
`

// Create inserts a new workflow record.
func (r *WorkflowRepository) Create(ctx context.Context, record *models.WorkflowRecord) error {
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	record.UpdatedAt = now

	documentJSON, validationJSON, err := marshalRecordFields(record)
	if err != nil {
		return persistence.NewWorkflowError("Create", record.ID, err)
	}

	query := `
		INSERT INTO workflows (id, owner, prompt, status, document, validation_errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Owner,
		record.Prompt,
		record.Status,
		documentJSON,
		validationJSON,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.NewWorkflowError("Create", record.ID, persistence.ErrWorkflowAlreadyExists)
		}

		return fmt.Errorf("failed to insert workflow %s: %w", record.ID, err)
	}

	return nil
}

// GetByID returns a workflow record by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.WorkflowRecord, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow %s: %w", id, err)
	}

	return record, nil
}

// Update rewrites an existing workflow record.
func (r *WorkflowRepository) Update(ctx context.Context, record *models.WorkflowRecord) error {
	record.UpdatedAt = time.Now().UTC()

	documentJSON, validationJSON, err := marshalRecordFields(record)
	if err != nil {
		return persistence.NewWorkflowError("Update", record.ID, err)
	}

	query := `
		UPDATE workflows
		SET status = $2, document = $3, validation_errors = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Status,
		documentJSON,
		validationJSON,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow %s: %w", record.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result for workflow %s: %w", record.ID, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Update", record.ID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// ListByOwner returns all workflow records for an owner, newest first.
func (r *WorkflowRepository) ListByOwner(ctx context.Context, owner string) ([]*models.WorkflowRecord, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE owner = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.WorkflowRecord, 0)

	for rows.Next() {
		record, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return records, nil
}

// Delete removes a workflow record and its traces.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.WorkflowRecord, error) {
	var (
		record         models.WorkflowRecord
		documentJSON   []byte
		validationJSON []byte
	)

	err := row.Scan(
		&record.ID,
		&record.Owner,
		&record.Prompt,
		&record.Status,
		&documentJSON,
		&validationJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(documentJSON) > 0 {
		if err := json.Unmarshal(documentJSON, &record.Document); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
	}

	if len(validationJSON) > 0 {
		if err := json.Unmarshal(validationJSON, &record.ValidationErrors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validation errors: %w", err)
		}
	}

	return &record, nil
}

func marshalRecordFields(record *models.WorkflowRecord) ([]byte, []byte, error) {
	var (
		documentJSON   []byte
		validationJSON []byte
		err            error
	)

	if record.Document != nil {
		documentJSON, err = json.Marshal(record.Document)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal document: %w", err)
		}
	}

	if record.ValidationErrors != nil {
		validationJSON, err = json.Marshal(record.ValidationErrors)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal validation errors: %w", err)
		}
	}

	return documentJSON, validationJSON, nil
}

// isUniqueViolation matches the PostgreSQL unique_violation error code.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
