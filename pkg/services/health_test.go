package services_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowgen-io/flowgen/pkg/mocks"
	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGeneration_HealthCheck_UnhealthyStore(t *testing.T) {
	p := mocks.NewMockPersistence()
	p.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	service := services.NewGeneration(nil, p, discardLogger())

	message, healthy := service.HealthCheck(t.Context())
	assert.False(t, healthy)
	assert.Contains(t, message, "connection refused")
}

func TestGeneration_ListByOwner_StoreError(t *testing.T) {
	p := mocks.NewMockPersistence()
	p.GetMockWorkflowRepository().
		On("ListByOwner", mock.Anything, "alice").
		Return(nil, errors.New("disk failure"))

	service := services.NewGeneration(nil, p, discardLogger())

	_, err := service.ListByOwner(t.Context(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk failure")
}

func TestGeneration_Get_NotFound(t *testing.T) {
	p := mocks.NewMockPersistence()
	p.GetMockWorkflowRepository().
		On("GetByID", mock.Anything, "missing").
		Return(nil, persistence.ErrWorkflowNotFound)

	service := services.NewGeneration(nil, p, discardLogger())

	_, err := service.Get(t.Context(), "missing")
	require.ErrorIs(t, err, services.ErrWorkflowNotFound)
}
