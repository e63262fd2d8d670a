package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
)

// WorkflowRepository handles workflow-record file operations.
type WorkflowRepository struct {
	root string // File system root for storing workflow records
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

// Create writes a new workflow record. The identifier must not be in use.
func (wr *WorkflowRepository) Create(ctx context.Context, record *models.WorkflowRecord) error {
	existing, err := wr.GetByID(ctx, record.ID)
	if err != nil && !persistence.IsWorkflowNotFound(err) {
		return err
	}

	if existing != nil {
		return persistence.NewWorkflowError("Create", record.ID, persistence.ErrWorkflowAlreadyExists)
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	record.UpdatedAt = now

	return wr.write(record)
}

// GetByID retrieves a workflow record by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.WorkflowRecord, error) {
	filePath := filepath.Clean(path.Join(wr.root, "workflows", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	var record models.WorkflowRecord

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &record, nil
}

// Update rewrites an existing workflow record.
func (wr *WorkflowRepository) Update(ctx context.Context, record *models.WorkflowRecord) error {
	if _, err := wr.GetByID(ctx, record.ID); err != nil {
		return err
	}

	record.UpdatedAt = time.Now().UTC()

	return wr.write(record)
}

// ListByOwner returns all workflow records for an owner, newest first.
func (wr *WorkflowRepository) ListByOwner(ctx context.Context, owner string) ([]*models.WorkflowRecord, error) {
	root := os.DirFS(path.Join(wr.root, "workflows"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	records := make([]*models.WorkflowRecord, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5] // Remove .json extension

		record, err := wr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		if record.Owner == owner {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// Delete removes a workflow record by its ID. Missing records are not an
// error.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(wr.root, "workflows", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

func (wr *WorkflowRepository) write(record *models.WorkflowRecord) error {
	err := os.MkdirAll(path.Join(wr.root, "workflows"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", record.ID, err)
	}

	filePath := path.Join(wr.root, "workflows", record.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}
