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

// AutomationRepository stores durable automation records.
type AutomationRepository struct {
	root string
}

// NewAutomationRepository creates a new automation repository.
func NewAutomationRepository(root string) *AutomationRepository {
	return &AutomationRepository{root: root}
}

// Create writes a new automation record.
func (ar *AutomationRepository) Create(_ context.Context, automation *models.Automation) error {
	err := os.MkdirAll(path.Join(ar.root, "automations"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create automations directory: %w", err)
	}

	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(automation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal automation %s: %w", automation.ID, err)
	}

	filePath := path.Join(ar.root, "automations", automation.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// GetByID retrieves an automation record by its ID.
func (ar *AutomationRepository) GetByID(_ context.Context, id string) (*models.Automation, error) {
	filePath := filepath.Clean(path.Join(ar.root, "automations", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrAutomationNotFound
		}

		return nil, fmt.Errorf("failed to fetch automation %s: %w", id, err)
	}

	var automation models.Automation

	err = json.Unmarshal(body, &automation)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal automation %s: %w", id, err)
	}

	return &automation, nil
}

// ListByOwner returns all automation records for an owner, newest first.
func (ar *AutomationRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Automation, error) {
	root := os.DirFS(path.Join(ar.root, "automations"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list automation files: %w", err)
	}

	automations := make([]*models.Automation, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5]

		automation, err := ar.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load automation %s: %w", id, err)
		}

		if automation.Owner == owner {
			automations = append(automations, automation)
		}
	}

	sort.Slice(automations, func(i, j int) bool {
		return automations[i].CreatedAt.After(automations[j].CreatedAt)
	})

	return automations, nil
}
