package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/services"
)

// APIHandlers exposes the generation service over HTTP.
type APIHandlers struct {
	generation *services.Generation
	validator  *validator.Validate
}

func NewAPIHandlers(generation *services.Generation, validate *validator.Validate) *APIHandlers {
	return &APIHandlers{
		generation: generation,
		validator:  validate,
	}
}

// CreateGeneration runs the full pipeline for one prompt. A failed run is a
// structured failure payload, not an RFC-7807 problem: the run itself is a
// domain outcome the client must inspect.
func (h *APIHandlers) CreateGeneration(c fiber.Ctx) error {
	var req GenerateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	run, err := h.generation.Generate(c.Context(), services.GenerateRequest{
		Prompt: req.Prompt,
		UserID: req.UserID,
		DryRun: req.DryRun,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	if run.Succeeded() {
		return c.Status(fiber.StatusCreated).JSON(GenerationSuccessResponse{
			WorkflowID:       run.WorkflowID,
			Status:           run.Status,
			WorkflowDocument: run.Document,
			PerStageResults:  stageSummaries(run.Stages),
			Simulation:       run.Simulation,
		})
	}

	status := fiber.StatusBadGateway
	if run.Status == models.WorkflowStatusValidationFailed {
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(GenerationFailureResponse{
		WorkflowID:       run.WorkflowID,
		Status:           run.Status,
		ErrorStage:       run.ErrorStage,
		ErrorMessage:     run.ErrorMessage,
		ValidationErrors: run.ValidationErrors,
		PerStageResults:  stageSummaries(run.Stages),
	})
}

// GetWorkflows lists the caller's workflow records.
func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	owner := c.Query("user_id")

	records, err := h.generation.ListByOwner(c.Context(), owner)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   records,
		"total_count": len(records),
	})
}

// GetWorkflow returns one workflow record.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	record, err := h.generation.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

// GetWorkflowDocument returns the finalized document for download.
func (h *APIHandlers) GetWorkflowDocument(c fiber.Ctx) error {
	document, err := h.generation.Document(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="workflow.json"`)

	return c.JSON(document)
}

// ValidateWorkflow re-runs the validator over a stored document.
func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	report, err := h.generation.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

// DryRunWorkflow re-runs the simulator over a stored document.
func (h *APIHandlers) DryRunWorkflow(c fiber.Ctx) error {
	result, err := h.generation.DryRun(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// GetWorkflowStages returns the execution trace of a workflow.
func (h *APIHandlers) GetWorkflowStages(c fiber.Ctx) error {
	traces, err := h.generation.StageResults(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_id": c.Params("id"),
		"stages":      traces,
	})
}

// GetAutomations lists the caller's automation records.
func (h *APIHandlers) GetAutomations(c fiber.Ctx) error {
	automations, err := h.generation.Automations(c.Context(), c.Query("user_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"automations": automations,
		"total_count": len(automations),
	})
}

// HealthCheck reports service and store health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, healthy := h.generation.HealthCheck(c.Context())
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"message": message,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": message,
	})
}
