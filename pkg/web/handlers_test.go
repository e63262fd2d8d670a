package web_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgen-io/flowgen/pkg/llm"
	"github.com/flowgen-io/flowgen/pkg/llm/providers"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/persistence/file"
	"github.com/flowgen-io/flowgen/pkg/pipeline"
	"github.com/flowgen-io/flowgen/pkg/prompts"
	"github.com/flowgen-io/flowgen/pkg/services"
	"github.com/flowgen-io/flowgen/pkg/web"
)

const finalDocumentJSON = `{
	"name": "Signup Alert",
	"nodes": [
		{
			"id": "trigger",
			"name": "On signup webhook",
			"type": "n8n-nodes-base.webhook",
			"parameters": {},
			"position": [100, 100]
		},
		{
			"id": "alert",
			"name": "Post alert",
			"type": "n8n-nodes-base.httpRequest",
			"parameters": {"url": "https://chat.example.com/hooks/abc", "method": "POST"},
			"position": [300, 100]
		}
	],
	"connections": {
		"trigger": {"main": [[{"node": "alert", "type": "main", "index": 0}]]}
	},
	"active": false,
	"settings": {}
}`

type stageSetup struct {
	provider llm.Provider
	config   llm.StageConfig
}

func defaultStages() map[string]stageSetup {
	mockCfg := llm.StageConfig{Provider: "mock", Model: "test"}

	return map[string]stageSetup{
		models.StagePlanner:   {providers.NewMock(`{"objective": "alert on signup"}`), mockCfg},
		models.StageRefiner:   {providers.NewMock(`{"objective": "alert on signup"}`), mockCfg},
		models.StageOptimizer: {providers.NewMock(`{"objective": "alert on signup"}`), mockCfg},
		models.StageFinalizer: {providers.NewMock(finalDocumentJSON), mockCfg},
	}
}

func setupTestApp(t *testing.T, setups map[string]stageSetup) (*fiber.App, *file.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	templates := prompts.NewLoader(nil, logger)
	notifier := pipeline.NewLogNotifier(logger)

	stages := make([]*pipeline.StageExecutor, 0, len(models.StageNames))
	for i, name := range models.StageNames {
		setup := setups[name]
		stages = append(stages, pipeline.NewStageExecutor(pipeline.ExecutorConfig{
			Number:    i + 1,
			Name:      name,
			LLM:       setup.config,
			Provider:  setup.provider,
			Templates: templates,
			Traces:    p.StageResultRepository(),
			Notifier:  notifier,
			Logger:    logger,
		}))
	}

	orchestrator := pipeline.NewOrchestrator(stages, p.WorkflowRepository(), p.AutomationRepository(), nil, logger)
	generationService := services.NewGeneration(orchestrator, p, logger)
	handlers := web.NewAPIHandlers(generationService, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	app.Post("/generations", handlers.CreateGeneration)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Get("/:id", handlers.GetWorkflow)
	w.Get("/:id/document", handlers.GetWorkflowDocument)
	w.Post("/:id/validate", handlers.ValidateWorkflow)
	w.Post("/:id/dry-run", handlers.DryRunWorkflow)
	w.Get("/:id/stages", handlers.GetWorkflowStages)

	app.Get("/automations", handlers.GetAutomations)
	app.Get("/health", handlers.HealthCheck)

	return app, p
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func generateWorkflow(t *testing.T, app *fiber.App) web.GenerationSuccessResponse {
	t.Helper()

	resp := postJSON(t, app, "/generations", web.GenerateWorkflowRequest{
		Prompt: "alert the team when someone signs up",
		UserID: "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return decodeBody[web.GenerationSuccessResponse](t, resp)
}

func TestCreateGeneration_Success(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())

	result := generateWorkflow(t, app)

	assert.NotEmpty(t, result.WorkflowID)
	assert.Equal(t, models.WorkflowStatusCompleted, result.Status)
	require.NotNil(t, result.WorkflowDocument)
	assert.Equal(t, "Signup Alert", result.WorkflowDocument.Name)
	require.Len(t, result.PerStageResults, 4)
	assert.Equal(t, models.StagePlanner, result.PerStageResults[0].StageName)
}

func TestCreateGeneration_MissingPrompt(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())

	resp := postJSON(t, app, "/generations", web.GenerateWorkflowRequest{UserID: "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateGeneration_StageFailure(t *testing.T) {
	setups := defaultStages()
	failing := providers.NewMock()
	failing.QueueError(errors.New("model endpoint returned 500"))
	setups[models.StageRefiner] = stageSetup{failing, llm.StageConfig{Provider: "mock"}}

	app, _ := setupTestApp(t, setups)

	resp := postJSON(t, app, "/generations", web.GenerateWorkflowRequest{
		Prompt: "alert the team when someone signs up",
		UserID: "alice",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	failure := decodeBody[web.GenerationFailureResponse](t, resp)
	assert.Equal(t, models.WorkflowStatusFailed, failure.Status)
	assert.Equal(t, models.StageRefiner, failure.ErrorStage)
	assert.Contains(t, failure.ErrorMessage, "500")
	assert.Len(t, failure.PerStageResults, 2)
}

func TestCreateGeneration_ValidationFailure(t *testing.T) {
	setups := defaultStages()
	setups[models.StageFinalizer] = stageSetup{
		providers.NewMock(`{"name": "Headless", "nodes": [{"id": "a", "name": "A", "type": "n8n-nodes-base.set", "position": [0, 0]}], "connections": {}, "active": false, "settings": {}}`),
		llm.StageConfig{Provider: "mock"},
	}

	app, _ := setupTestApp(t, setups)

	resp := postJSON(t, app, "/generations", web.GenerateWorkflowRequest{
		Prompt: "alert the team when someone signs up",
		UserID: "alice",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	failure := decodeBody[web.GenerationFailureResponse](t, resp)
	assert.Equal(t, models.WorkflowStatusValidationFailed, failure.Status)
	assert.NotEmpty(t, failure.ValidationErrors)
}

func TestCreateGeneration_DryRun(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())

	resp := postJSON(t, app, "/generations", web.GenerateWorkflowRequest{
		Prompt: "alert the team when someone signs up",
		UserID: "alice",
		DryRun: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	result := decodeBody[web.GenerationSuccessResponse](t, resp)
	assert.Equal(t, models.WorkflowStatusDryRunComplete, result.Status)
	require.NotNil(t, result.Simulation)
	assert.True(t, result.Simulation.ReadyForDeployment)
}

func TestGetWorkflow(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())
	created := generateWorkflow(t, app)

	resp := getJSON(t, app, "/workflows/"+created.WorkflowID)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	record := decodeBody[models.WorkflowRecord](t, resp)
	assert.Equal(t, created.WorkflowID, record.ID)
	assert.Equal(t, "alice", record.Owner)
}

func TestGetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())

	resp := getJSON(t, app, "/workflows/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetWorkflows_RequiresUser(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())

	resp := getJSON(t, app, "/workflows/")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflowDocument(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())
	created := generateWorkflow(t, app)

	resp := getJSON(t, app, "/workflows/"+created.WorkflowID+"/document")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "workflow.json")

	doc := decodeBody[models.WorkflowDocument](t, resp)
	assert.Equal(t, "Signup Alert", doc.Name)
}

func TestValidateAndDryRunEndpoints(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())
	created := generateWorkflow(t, app)

	resp := postJSON(t, app, "/workflows/"+created.WorkflowID+"/validate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decodeBody[models.ValidationReport](t, resp)
	assert.True(t, report.IsValid)

	resp = postJSON(t, app, "/workflows/"+created.WorkflowID+"/dry-run", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[models.DryRunResult](t, resp)
	assert.True(t, result.ReadyForDeployment)
	assert.Len(t, result.Nodes, 2)
}

func TestGetWorkflowStages(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())
	created := generateWorkflow(t, app)

	resp := getJSON(t, app, "/workflows/"+created.WorkflowID+"/stages")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	stages, ok := body["stages"].([]any)
	require.True(t, ok)
	assert.Len(t, stages, 4)
}

func TestGetAutomations(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())
	generateWorkflow(t, app)

	resp := getJSON(t, app, "/automations?user_id=alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, float64(1), body["total_count"])
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupTestApp(t, defaultStages())

	resp := getJSON(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
