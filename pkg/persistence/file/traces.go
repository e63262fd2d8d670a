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

// StageResultRepository stores per-stage execution traces. All traces for a
// workflow live in one JSON file keyed by the workflow ID.
type StageResultRepository struct {
	root string
}

// NewStageResultRepository creates a new stage result repository.
func NewStageResultRepository(root string) *StageResultRepository {
	return &StageResultRepository{root: root}
}

// Append adds the initial running snapshot of a stage to the workflow trace.
func (sr *StageResultRepository) Append(ctx context.Context, result *models.StageResult) error {
	results, err := sr.ListByWorkflow(ctx, result.WorkflowID)
	if err != nil {
		return err
	}

	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	results = append(results, result)

	return sr.write(result.WorkflowID, results)
}

// Finish replaces the running snapshot of a stage with its terminal
// snapshot. A stage that already reached a terminal status cannot be
// rewritten.
func (sr *StageResultRepository) Finish(ctx context.Context, result *models.StageResult) error {
	results, err := sr.ListByWorkflow(ctx, result.WorkflowID)
	if err != nil {
		return err
	}

	for i, existing := range results {
		if existing.ID != result.ID {
			continue
		}

		if existing.Terminal() {
			return &persistence.StageResultError{
				Op:         "Finish",
				WorkflowID: result.WorkflowID,
				StageName:  result.StageName,
				Err:        persistence.ErrStageResultImmutable,
			}
		}

		results[i] = result

		return sr.write(result.WorkflowID, results)
	}

	return &persistence.StageResultError{
		Op:         "Finish",
		WorkflowID: result.WorkflowID,
		StageName:  result.StageName,
		Err:        persistence.ErrStageResultNotFound,
	}
}

// ListByWorkflow returns all stage traces for a workflow ordered by stage
// number.
func (sr *StageResultRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.StageResult, error) {
	filePath := filepath.Clean(path.Join(sr.root, "traces", workflowID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.StageResult{}, nil
		}

		return nil, fmt.Errorf("failed to fetch traces for workflow %s: %w", workflowID, err)
	}

	var results []*models.StageResult

	err = json.Unmarshal(body, &results)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal traces for workflow %s: %w", workflowID, err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StageNumber < results[j].StageNumber
	})

	return results, nil
}

// PurgeOlderThan removes trace files whose newest entry is older than the
// given age. It returns the number of stage results removed.
func (sr *StageResultRepository) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	root := os.DirFS(path.Join(sr.root, "traces"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return 0, fmt.Errorf("failed to list trace files: %w", err)
	}

	cutoff := time.Now().UTC().Add(-age)

	var purged int64

	for _, file := range jsonFiles {
		workflowID := file[:len(file)-5]

		results, err := sr.ListByWorkflow(ctx, workflowID)
		if err != nil {
			return purged, err
		}

		stale := len(results) > 0

		for _, result := range results {
			if result.CreatedAt.After(cutoff) {
				stale = false

				break
			}
		}

		if !stale {
			continue
		}

		if err := os.Remove(path.Join(sr.root, "traces", file)); err != nil {
			return purged, fmt.Errorf("failed to purge traces for workflow %s: %w", workflowID, err)
		}

		purged += int64(len(results))
	}

	return purged, nil
}

func (sr *StageResultRepository) write(workflowID string, results []*models.StageResult) error {
	err := os.MkdirAll(path.Join(sr.root, "traces"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create traces directory: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal traces for workflow %s: %w", workflowID, err)
	}

	filePath := path.Join(sr.root, "traces", workflowID+".json")

	return os.WriteFile(filePath, data, 0600)
}
