// Package file provides the file-based persistence implementation used for
// development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/flowgen-io/flowgen/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root           string
	workflowRepo   *WorkflowRepository
	stageRepo      *StageResultRepository
	automationRepo *AutomationRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix is stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		workflowRepo:   NewWorkflowRepository(cleanRoot),
		stageRepo:      NewStageResultRepository(cleanRoot),
		automationRepo: NewAutomationRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. Nothing to do for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) StageResultRepository() persistence.StageResultRepository {
	return fp.stageRepo
}

func (fp *Persistence) AutomationRepository() persistence.AutomationRepository {
	return fp.automationRepo
}
