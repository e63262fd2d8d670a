// Package mocks provides testify-based mock implementations of the
// persistence and event bus interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
)

// MockWorkflowRepository is a mock implementation of persistence.WorkflowRepository interface.
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) Create(ctx context.Context, record *models.WorkflowRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockWorkflowRepository) GetByID(ctx context.Context, id string) (*models.WorkflowRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowRecord), args.Error(1)
}

func (m *MockWorkflowRepository) Update(ctx context.Context, record *models.WorkflowRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockWorkflowRepository) ListByOwner(ctx context.Context, owner string) ([]*models.WorkflowRecord, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowRecord), args.Error(1)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockStageResultRepository is a mock implementation of persistence.StageResultRepository interface.
type MockStageResultRepository struct {
	mock.Mock
}

func (m *MockStageResultRepository) Append(ctx context.Context, result *models.StageResult) error {
	args := m.Called(ctx, result)

	return args.Error(0)
}

func (m *MockStageResultRepository) Finish(ctx context.Context, result *models.StageResult) error {
	args := m.Called(ctx, result)

	return args.Error(0)
}

func (m *MockStageResultRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.StageResult, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.StageResult), args.Error(1)
}

func (m *MockStageResultRepository) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	args := m.Called(ctx, age)

	return args.Get(0).(int64), args.Error(1)
}

// MockAutomationRepository is a mock implementation of persistence.AutomationRepository interface.
type MockAutomationRepository struct {
	mock.Mock
}

func (m *MockAutomationRepository) Create(ctx context.Context, automation *models.Automation) error {
	args := m.Called(ctx, automation)

	return args.Error(0)
}

func (m *MockAutomationRepository) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Automation), args.Error(1)
}

func (m *MockAutomationRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Automation, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Automation), args.Error(1)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	workflowRepo   *MockWorkflowRepository
	stageRepo      *MockStageResultRepository
	automationRepo *MockAutomationRepository
}

// NewMockPersistence creates a new MockPersistence with all mock repositories.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		workflowRepo:   &MockWorkflowRepository{},
		stageRepo:      &MockStageResultRepository{},
		automationRepo: &MockAutomationRepository{},
	}
}

// GetMockWorkflowRepository returns the underlying mock workflow repository for setting up expectations.
func (m *MockPersistence) GetMockWorkflowRepository() *MockWorkflowRepository {
	return m.workflowRepo
}

// GetMockStageResultRepository returns the underlying mock stage result repository for setting up expectations.
func (m *MockPersistence) GetMockStageResultRepository() *MockStageResultRepository {
	return m.stageRepo
}

// GetMockAutomationRepository returns the underlying mock automation repository for setting up expectations.
func (m *MockPersistence) GetMockAutomationRepository() *MockAutomationRepository {
	return m.automationRepo
}

func (m *MockPersistence) WorkflowRepository() persistence.WorkflowRepository {
	return m.workflowRepo
}

func (m *MockPersistence) StageResultRepository() persistence.StageResultRepository {
	return m.stageRepo
}

func (m *MockPersistence) AutomationRepository() persistence.AutomationRepository {
	return m.automationRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
