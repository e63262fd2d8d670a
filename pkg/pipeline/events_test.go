package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowgen-io/flowgen/pkg/eventbus"
	"github.com/flowgen-io/flowgen/pkg/events"
	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/llm/providers"
	"github.com/flowgen-io/flowgen/pkg/mocks"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence/file"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/prompts"
)

func newOrchestratorWithBus(t *testing.T, bus eventbus.EventBus) *pipeline.Orchestrator {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	logger := testLogger()
	templates := prompts.NewLoader(nil, logger)
	notifier := pipeline.NewLogNotifier(logger)

	stageProviders := [4]llm.Provider{
		providers.NewMock(`{"objective": "notify team"}`),
		providers.NewMock(`{"objective": "notify team", "error_handling": []}`),
		providers.NewMock(`{"objective": "notify team", "performance_optimizations": []}`),
		providers.NewMock(validDocumentJSON),
	}

	configs := mockConfigs()

	stages := make([]*pipeline.StageExecutor, 0, len(models.StageNames))
	for i, name := range models.StageNames {
		stages = append(stages, pipeline.NewStageExecutor(pipeline.ExecutorConfig{
			Number:    i + 1,
			Name:      name,
			LLM:       configs[i],
			Provider:  stageProviders[i],
			Templates: templates,
			Traces:    p.StageResultRepository(),
			Notifier:  notifier,
			Logger:    logger,
		}))
	}

	return pipeline.NewOrchestrator(stages, p.WorkflowRepository(), p.AutomationRepository(), bus, logger)
}

func TestOrchestrator_PublishesLifecycleEvents(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("event-id")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	orchestrator := newOrchestratorWithBus(t, bus)

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{
		Prompt: "when a form is submitted, send a slack message",
		UserID: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, models.WorkflowStatusCompleted, run.Status)

	counts := map[events.EventType]int{}

	for _, call := range bus.Calls {
		if call.Method != "Publish" {
			continue
		}

		event, ok := call.Arguments.Get(2).(eventbus.Event)
		require.True(t, ok)

		counts[event.GetType()]++

		assert.Equal(t, run.WorkflowID, call.Arguments.String(1))
	}

	assert.Equal(t, 1, counts[events.GenerationStartedEvent])
	assert.Equal(t, 4, counts[events.StageStartedEvent])
	assert.Equal(t, 4, counts[events.StageFinishedEvent])
	assert.Equal(t, 1, counts[events.GenerationFinishedEvent])
}

func TestOrchestrator_PublishFailureDoesNotAbortRun(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("event-id")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	orchestrator := newOrchestratorWithBus(t, bus)

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{
		Prompt: "when a form is submitted, send a slack message",
		UserID: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusCompleted, run.Status)
}
