package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
)

// AutomationRepository handles automation-record database operations.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAutomationRepository creates a new automation repository.
func NewAutomationRepository(db *sql.DB, logger *slog.Logger) *AutomationRepository {
	return &AutomationRepository{db: db, logger: logger}
}

// Create inserts a new automation record.
func (r *AutomationRepository) Create(ctx context.Context, automation *models.Automation) error {
	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = time.Now().UTC()
	}

	documentJSON, err := json.Marshal(automation.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal automation document: %w", err)
	}

	query := `
		INSERT INTO automations (id, workflow_id, owner, name, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		automation.ID,
		automation.WorkflowID,
		automation.Owner,
		automation.Name,
		documentJSON,
		automation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert automation %s: %w", automation.ID, err)
	}

	return nil
}

// GetByID returns an automation record by its ID.
func (r *AutomationRepository) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	query := `
		SELECT id, workflow_id, owner, name, document, created_at
		FROM automations
		WHERE id = $1
	`

	var (
		automation   models.Automation
		documentJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&automation.ID,
		&automation.WorkflowID,
		&automation.Owner,
		&automation.Name,
		&documentJSON,
		&automation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrAutomationNotFound
		}

		return nil, fmt.Errorf("failed to scan automation %s: %w", id, err)
	}

	if err := json.Unmarshal(documentJSON, &automation.Document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal automation document: %w", err)
	}

	return &automation, nil
}

// ListByOwner returns all automation records for an owner, newest first.
func (r *AutomationRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Automation, error) {
	query := `
		SELECT id, workflow_id, owner, name, document, created_at
		FROM automations
		WHERE owner = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		var (
			automation   models.Automation
			documentJSON []byte
		)

		err := rows.Scan(
			&automation.ID,
			&automation.WorkflowID,
			&automation.Owner,
			&automation.Name,
			&documentJSON,
			&automation.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}

		if err := json.Unmarshal(documentJSON, &automation.Document); err != nil {
			return nil, fmt.Errorf("failed to unmarshal automation document: %w", err)
		}

		automations = append(automations, &automation)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating automations: %w", err)
	}

	return automations, nil
}
