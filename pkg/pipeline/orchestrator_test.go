package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/llm/providers"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/persistence/file"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/prompts"
)

const validDocumentJSON = `{
	"name": "Form to Slack",
	"nodes": [
		{
			"id": "trigger",
			"name": "On form submission",
			"type": "n8n-nodes-base.webhook",
			"parameters": {},
			"position": [100, 100]
		},
		{
			"id": "notify",
			"name": "Send Slack message",
			"type": "n8n-nodes-base.httpRequest",
			"parameters": {"url": "https://hooks.slack.com/T000/B000", "method": "POST"},
			"position": [300, 100]
		}
	],
	"connections": {
		"trigger": {"main": [[{"node": "notify", "type": "main", "index": 0}]]}
	},
	"active": false,
	"settings": {}
}`

const noTriggerDocumentJSON = `{
	"name": "Headless",
	"nodes": [
		{
			"id": "notify",
			"name": "Send Slack message",
			"type": "n8n-nodes-base.httpRequest",
			"parameters": {"url": "https://hooks.slack.com/T000/B000"},
			"position": [300, 100]
		}
	],
	"connections": {},
	"active": false,
	"settings": {}
}`

func newOrchestrator(t *testing.T, stageProviders [4]llm.Provider, configs [4]llm.StageConfig) (*pipeline.Orchestrator, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	logger := testLogger()
	templates := prompts.NewLoader(nil, logger)
	notifier := pipeline.NewLogNotifier(logger)

	stages := make([]*pipeline.StageExecutor, 0, len(models.StageNames))
	for i, name := range models.StageNames {
		var fallback pipeline.FallbackFunc
		if name == models.StageFinalizer {
			fallback = pipeline.FinalizerFallback
		}

		stages = append(stages, pipeline.NewStageExecutor(pipeline.ExecutorConfig{
			Number:    i + 1,
			Name:      name,
			LLM:       configs[i],
			Provider:  stageProviders[i],
			Templates: templates,
			Traces:    p.StageResultRepository(),
			Notifier:  notifier,
			Logger:    logger,
			Fallback:  fallback,
		}))
	}

	orchestrator := pipeline.NewOrchestrator(
		stages,
		p.WorkflowRepository(),
		p.AutomationRepository(),
		nil,
		logger,
	)

	return orchestrator, p
}

func mockConfigs() [4]llm.StageConfig {
	var configs [4]llm.StageConfig
	for i := range configs {
		configs[i] = llm.StageConfig{Provider: "mock", Model: "test-model"}
	}

	return configs
}

func TestOrchestrator_HappyPath(t *testing.T) {
	planner := providers.NewMock(`{"objective": "notify team on form submission", "steps": ["receive", "notify"]}`)
	refiner := providers.NewMock(`{"objective": "notify team", "steps": ["receive", "notify"], "error_handling": ["retry"]}`)
	optimizer := providers.NewMock(`{"objective": "notify team", "steps": ["receive", "notify"], "performance_optimizations": []}`)
	finalizer := providers.NewMock("```json\n" + validDocumentJSON + "\n```")

	orchestrator, p := newOrchestrator(t,
		[4]llm.Provider{planner, refiner, optimizer, finalizer}, mockConfigs())

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{
		Prompt: "when a form is submitted, send a slack message",
		UserID: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusCompleted, run.Status)
	assert.True(t, run.Succeeded())
	assert.Empty(t, run.ErrorStage)
	require.Len(t, run.Stages, 4)

	for i, stage := range run.Stages {
		assert.Equal(t, i+1, stage.StageNumber)
		assert.Equal(t, models.StageNames[i], stage.StageName)
		assert.Equal(t, models.StageStatusCompleted, stage.Status)
	}

	require.NotNil(t, run.Document)
	assert.Equal(t, "Form to Slack", run.Document.Name)
	assert.Nil(t, run.Simulation)

	// Each provider was hit exactly once.
	assert.Equal(t, 1, planner.CallCount())
	assert.Equal(t, 1, refiner.CallCount())
	assert.Equal(t, 1, optimizer.CallCount())
	assert.Equal(t, 1, finalizer.CallCount())

	// The planner received the raw prompt, later stages the prior output.
	assert.Contains(t, planner.Calls()[0].Request.Prompt, "slack message")
	assert.Contains(t, refiner.Calls()[0].Request.Prompt, "notify team on form submission")

	record, err := p.WorkflowRepository().GetByID(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, record.Status)
	assert.Equal(t, "alice", record.Owner)
	require.NotNil(t, record.Document)

	automations, err := p.AutomationRepository().ListByOwner(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, automations, 1)
	assert.Equal(t, run.WorkflowID, automations[0].WorkflowID)
	assert.Equal(t, "Form to Slack", automations[0].Name)
}

func TestOrchestrator_StageFailureAbortsRun(t *testing.T) {
	planner := providers.NewMock(`{"objective": "x"}`)
	refiner := providers.NewMock()
	refiner.QueueError(assert.AnError)
	optimizer := providers.NewMock(`{"never": "reached"}`)
	finalizer := providers.NewMock(`{"never": "reached"}`)

	orchestrator, p := newOrchestrator(t,
		[4]llm.Provider{planner, refiner, optimizer, finalizer}, mockConfigs())

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{Prompt: "anything", UserID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusFailed, run.Status)
	assert.Equal(t, models.StageRefiner, run.ErrorStage)
	assert.NotEmpty(t, run.ErrorMessage)
	require.Len(t, run.Stages, 2)
	assert.Equal(t, models.StageStatusFailed, run.Stages[1].Status)

	// The failure aborts the pipeline before later stages run.
	assert.Zero(t, optimizer.CallCount())
	assert.Zero(t, finalizer.CallCount())

	record, err := p.WorkflowRepository().GetByID(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusFailed, record.Status)

	automations, err := p.AutomationRepository().ListByOwner(t.Context(), "alice")
	require.NoError(t, err)
	assert.Empty(t, automations)
}

func TestOrchestrator_ValidationFailure(t *testing.T) {
	planner := providers.NewMock(`{"objective": "x"}`)
	refiner := providers.NewMock(`{"objective": "x"}`)
	optimizer := providers.NewMock(`{"objective": "x"}`)
	finalizer := providers.NewMock(noTriggerDocumentJSON)

	orchestrator, p := newOrchestrator(t,
		[4]llm.Provider{planner, refiner, optimizer, finalizer}, mockConfigs())

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{Prompt: "anything", UserID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusValidationFailed, run.Status)
	assert.False(t, run.Succeeded())
	assert.NotEmpty(t, run.ValidationErrors)
	assert.Contains(t, run.ValidationErrors, "workflow has no trigger node and cannot be started")

	// The partial artifact is retained for inspection.
	require.NotNil(t, run.Document)

	record, err := p.WorkflowRepository().GetByID(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusValidationFailed, record.Status)
	assert.NotEmpty(t, record.ValidationErrors)
	assert.False(t, record.Deployable())

	automations, err := p.AutomationRepository().ListByOwner(t.Context(), "alice")
	require.NoError(t, err)
	assert.Empty(t, automations)
}

func TestOrchestrator_DryRun(t *testing.T) {
	planner := providers.NewMock(`{"objective": "x"}`)
	refiner := providers.NewMock(`{"objective": "x"}`)
	optimizer := providers.NewMock(`{"objective": "x"}`)
	finalizer := providers.NewMock(validDocumentJSON)

	orchestrator, p := newOrchestrator(t,
		[4]llm.Provider{planner, refiner, optimizer, finalizer}, mockConfigs())

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{
		Prompt: "anything",
		UserID: "alice",
		DryRun: true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusDryRunComplete, run.Status)
	assert.True(t, run.Succeeded())
	require.NotNil(t, run.Simulation)
	assert.Len(t, run.Simulation.Nodes, 2)
	assert.True(t, run.Simulation.ReadyForDeployment)

	record, err := p.WorkflowRepository().GetByID(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusDryRunComplete, record.Status)
}

func TestOrchestrator_CredentialMissingHaltsFirstStage(t *testing.T) {
	configs := mockConfigs()
	configs[0] = llm.StageConfig{Provider: "anthropic", Model: "claude"} // no key

	planner := providers.NewMock(`{"never": "reached"}`)
	rest := providers.NewMock(`{"never": "reached"}`)

	orchestrator, _ := newOrchestrator(t,
		[4]llm.Provider{planner, rest, rest, rest}, configs)

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{Prompt: "anything", UserID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusFailed, run.Status)
	assert.Equal(t, models.StagePlanner, run.ErrorStage)
	assert.Contains(t, run.ErrorMessage, "ANTHROPIC_API_KEY")
	assert.Zero(t, planner.CallCount())
	assert.Zero(t, rest.CallCount())
}

func TestOrchestrator_DegradedStageStillCompletes(t *testing.T) {
	planner := providers.NewMock("no json here at all")
	refiner := providers.NewMock(`{"objective": "x"}`)
	optimizer := providers.NewMock(`{"objective": "x"}`)
	finalizer := providers.NewMock(validDocumentJSON)

	orchestrator, _ := newOrchestrator(t,
		[4]llm.Provider{planner, refiner, optimizer, finalizer}, mockConfigs())

	run, err := orchestrator.Run(t.Context(), pipeline.RunRequest{Prompt: "anything", UserID: "alice"})
	require.NoError(t, err)

	// Lost structure degrades the stage but never aborts the pipeline.
	assert.Equal(t, models.WorkflowStatusCompleted, run.Status)
	require.Len(t, run.Stages, 4)
	assert.Equal(t, models.StageStatusCompleted, run.Stages[0].Status)

	// The refiner saw the partial marker from the degraded planner.
	assert.Contains(t, refiner.Calls()[0].Request.Prompt, "partial")
}
