package services_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/llm/providers"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence/file"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/prompts"
	"github.com/flowgen-io/flowgen/pkg/services"
)

const finalDocumentJSON = `{
	"name": "Daily Digest",
	"nodes": [
		{
			"id": "trigger",
			"name": "Every morning",
			"type": "n8n-nodes-base.scheduleTrigger",
			"parameters": {},
			"position": [100, 100]
		},
		{
			"id": "send",
			"name": "Send digest",
			"type": "n8n-nodes-base.httpRequest",
			"parameters": {"url": "https://api.example.com/digest", "method": "POST"},
			"position": [300, 100]
		}
	],
	"connections": {
		"trigger": {"main": [[{"node": "send", "type": "main", "index": 0}]]}
	},
	"active": false,
	"settings": {}
}`

func newGenerationService(t *testing.T) (*services.Generation, *file.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templates := prompts.NewLoader(nil, logger)
	notifier := pipeline.NewLogNotifier(logger)

	responses := map[string]string{
		models.StagePlanner:   `{"objective": "send a daily digest"}`,
		models.StageRefiner:   `{"objective": "send a daily digest", "error_handling": []}`,
		models.StageOptimizer: `{"objective": "send a daily digest", "performance_optimizations": []}`,
		models.StageFinalizer: finalDocumentJSON,
	}

	stages := make([]*pipeline.StageExecutor, 0, len(models.StageNames))
	for i, name := range models.StageNames {
		stages = append(stages, pipeline.NewStageExecutor(pipeline.ExecutorConfig{
			Number:    i + 1,
			Name:      name,
			LLM:       llm.StageConfig{Provider: "mock", Model: "test"},
			Provider:  providers.NewMock(responses[name]),
			Templates: templates,
			Traces:    p.StageResultRepository(),
			Notifier:  notifier,
			Logger:    logger,
		}))
	}

	orchestrator := pipeline.NewOrchestrator(stages, p.WorkflowRepository(), p.AutomationRepository(), nil, logger)

	return services.NewGeneration(orchestrator, p, logger), p
}

func TestGeneration_Generate(t *testing.T) {
	svc, _ := newGenerationService(t)

	run, err := svc.Generate(t.Context(), services.GenerateRequest{
		Prompt: "send me a daily digest of new signups",
		UserID: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusCompleted, run.Status)
	require.NotNil(t, run.Document)
	assert.Equal(t, "Daily Digest", run.Document.Name)
}

func TestGeneration_GenerateRejectsEmptyPrompt(t *testing.T) {
	svc, _ := newGenerationService(t)

	_, err := svc.Generate(t.Context(), services.GenerateRequest{Prompt: "   ", UserID: "alice"})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrPromptRequired)
	assert.True(t, services.IsValidationError(err))
}

func TestGeneration_GenerateRejectsEmptyUser(t *testing.T) {
	svc, _ := newGenerationService(t)

	_, err := svc.Generate(t.Context(), services.GenerateRequest{Prompt: "do things", UserID: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUserIDRequired)
}

func TestGeneration_DocumentDownload(t *testing.T) {
	svc, _ := newGenerationService(t)

	run, err := svc.Generate(t.Context(), services.GenerateRequest{Prompt: "digest", UserID: "alice"})
	require.NoError(t, err)

	doc, err := svc.Document(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, "Daily Digest", doc.Name)
	assert.Len(t, doc.Nodes, 2)
}

func TestGeneration_DocumentNotReady(t *testing.T) {
	svc, p := newGenerationService(t)

	record := &models.WorkflowRecord{
		ID:     "wf-pending",
		Owner:  "alice",
		Prompt: "pending",
		Status: models.WorkflowStatusProcessing,
	}
	require.NoError(t, p.WorkflowRepository().Create(t.Context(), record))

	_, err := svc.Document(t.Context(), "wf-pending")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrDocumentNotReady)
}

func TestGeneration_GetMissing(t *testing.T) {
	svc, _ := newGenerationService(t)

	_, err := svc.Get(t.Context(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrWorkflowNotFound)
}

func TestGeneration_ValidateAndDryRun(t *testing.T) {
	svc, _ := newGenerationService(t)

	run, err := svc.Generate(t.Context(), services.GenerateRequest{Prompt: "digest", UserID: "alice"})
	require.NoError(t, err)

	report, err := svc.Validate(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	assert.True(t, report.IsValid)
	assert.Equal(t, 2, report.NodeCount)

	result, err := svc.DryRun(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	assert.True(t, result.ReadyForDeployment)
	assert.Len(t, result.Nodes, 2)
}

func TestGeneration_StageResults(t *testing.T) {
	svc, _ := newGenerationService(t)

	run, err := svc.Generate(t.Context(), services.GenerateRequest{Prompt: "digest", UserID: "alice"})
	require.NoError(t, err)

	traces, err := svc.StageResults(t.Context(), run.WorkflowID)
	require.NoError(t, err)
	require.Len(t, traces, 4)

	for i, trace := range traces {
		assert.Equal(t, i+1, trace.StageNumber)
		assert.Equal(t, models.StageStatusCompleted, trace.Status)
	}
}

func TestGeneration_ListByOwnerAndAutomations(t *testing.T) {
	svc, _ := newGenerationService(t)

	run, err := svc.Generate(t.Context(), services.GenerateRequest{Prompt: "digest", UserID: "alice"})
	require.NoError(t, err)

	records, err := svc.ListByOwner(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, run.WorkflowID, records[0].ID)

	automations, err := svc.Automations(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, automations, 1)
	assert.Equal(t, "Daily Digest", automations[0].Name)

	_, err = svc.ListByOwner(t.Context(), "")
	assert.ErrorIs(t, err, services.ErrUserIDRequired)
}

func TestGeneration_HealthCheck(t *testing.T) {
	svc, _ := newGenerationService(t)

	message, healthy := svc.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Contains(t, message, "healthy")
}
