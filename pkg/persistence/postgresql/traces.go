package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
)

// StageResultRepository handles stage-trace database operations.
type StageResultRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStageResultRepository creates a new stage result repository.
func NewStageResultRepository(db *sql.DB, logger *slog.Logger) *StageResultRepository {
	return &StageResultRepository{db: db, logger: logger}
}

// Append inserts the initial running snapshot of a stage.
func (r *StageResultRepository) Append(ctx context.Context, result *models.StageResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO stage_results (id, workflow_id, stage_number, stage_name, input, output, status, error_message, execution_time_ms, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		result.WorkflowID,
		result.StageNumber,
		result.StageName,
		nullableRaw(result.Input),
		nullableRaw(result.Output),
		result.Status,
		result.ErrorMessage,
		result.ExecutionTimeMS,
		result.CreatedAt,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stage result for workflow %s: %w", result.WorkflowID, err)
	}

	return nil
}

// Finish replaces a running snapshot with its terminal snapshot. Rows that
// already reached a terminal status are left untouched.
func (r *StageResultRepository) Finish(ctx context.Context, result *models.StageResult) error {
	query := `
		UPDATE stage_results
		SET output = $2, status = $3, error_message = $4, execution_time_ms = $5, completed_at = $6
		WHERE id = $1 AND status = $7
	`

	updated, err := r.db.ExecContext(ctx, query,
		result.ID,
		nullableRaw(result.Output),
		result.Status,
		result.ErrorMessage,
		result.ExecutionTimeMS,
		result.CompletedAt,
		models.StageStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to update stage result %s: %w", result.ID, err)
	}

	affected, err := updated.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result for stage result %s: %w", result.ID, err)
	}

	if affected > 0 {
		return nil
	}

	// Distinguish a missing row from an immutable one.
	var status models.StageStatus

	err = r.db.QueryRowContext(ctx, "SELECT status FROM stage_results WHERE id = $1", result.ID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return &persistence.StageResultError{
			Op:         "Finish",
			WorkflowID: result.WorkflowID,
			StageName:  result.StageName,
			Err:        persistence.ErrStageResultNotFound,
		}
	}

	if err != nil {
		return fmt.Errorf("failed to check stage result %s: %w", result.ID, err)
	}

	return &persistence.StageResultError{
		Op:         "Finish",
		WorkflowID: result.WorkflowID,
		StageName:  result.StageName,
		Err:        persistence.ErrStageResultImmutable,
	}
}

// ListByWorkflow returns all stage traces for a workflow ordered by stage
// number.
func (r *StageResultRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.StageResult, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , stage_number
		  , stage_name
		  , input
		  , output
		  , status
		  , error_message
		  , execution_time_ms
		  , created_at
		  , completed_at
		FROM stage_results
		WHERE workflow_id = $1
		ORDER BY stage_number ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage results: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	results := make([]*models.StageResult, 0)

	for rows.Next() {
		var (
			result models.StageResult
			input  []byte
			output []byte
		)

		err := rows.Scan(
			&result.ID,
			&result.WorkflowID,
			&result.StageNumber,
			&result.StageName,
			&input,
			&output,
			&result.Status,
			&result.ErrorMessage,
			&result.ExecutionTimeMS,
			&result.CreatedAt,
			&result.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage result: %w", err)
		}

		result.Input = input
		result.Output = output

		results = append(results, &result)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating stage results: %w", err)
	}

	return results, nil
}

// PurgeOlderThan removes stage traces created before the retention cutoff.
func (r *StageResultRepository) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)

	result, err := r.db.ExecContext(ctx, "DELETE FROM stage_results WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stage results: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged stage results: %w", err)
	}

	return purged, nil
}

// nullableRaw maps empty JSON payloads to SQL NULL.
func nullableRaw(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}

	return []byte(raw)
}
