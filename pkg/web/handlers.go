package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/journeyd/journeyd/pkg/eventbus"
	"github.com/journeyd/journeyd/pkg/events"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/registry"
	"github.com/journeyd/journeyd/pkg/services"
)

type APIHandlers struct {
	workflowService *services.Workflow
	persistence     persistence.Persistence
	publisher       eventbus.EventPublisher
	validator       *validator.Validate
	registry        *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	store persistence.Persistence,
	publisher eventbus.EventPublisher,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		persistence:     store,
		publisher:       publisher,
		validator:       validator,
		registry:        registry,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req, err := h.parseListWorkflowsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.workflowService.ListWorkflows(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":     result.Workflows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
	})
}

func (h *APIHandlers) parseListWorkflowsRequest(c fiber.Ctx) (*services.ListWorkflowsRequest, error) {
	req := &services.ListWorkflowsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.OrganizationID = c.Query("organization_id")

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		req.Status = &status
	}

	return req, nil
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: req.OrganizationID,
		Status:         req.Status,
		Trigger:        req.Trigger,
		Actions:        req.Actions,
		Metadata:       req.Metadata,
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Status != nil {
		existing.Status = *req.Status
	}

	if req.Trigger != nil {
		existing.Trigger = *req.Trigger
	}

	if req.Actions != nil {
		existing.Actions = req.Actions
	}

	if req.Metadata != nil {
		existing.Metadata = req.Metadata
	}

	updated, err := h.workflowService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ListWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if _, err := h.workflowService.FetchByID(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	executions, err := h.persistence.Executions().ListByWorkflow(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.persistence.Executions().GetExecution(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetExecutionSteps(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	if _, err := h.persistence.Executions().GetExecution(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	steps, err := h.persistence.Executions().StepsByExecution(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"steps": steps})
}

// IngestEvent accepts a marketing event and publishes it onto the bus. The
// runner picks it up asynchronously; the response only acknowledges receipt.
func (h *APIHandlers) IngestEvent(c fiber.Ctx) error {
	var req IngestEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	event := &models.Event{
		ID:             uuid.NewString(),
		OrganizationID: req.OrganizationID,
		Category:       req.Category,
		Name:           req.Name,
		ItemName:       req.ItemName,
		ItemCategory:   req.ItemCategory,
		ItemID:         req.ItemID,
		Value:          req.Value,
		UserID:         req.UserID,
		Data:           req.Data,
		OccurredAt:     occurredAt,
	}

	err := h.publisher.Publish(c.Context(), event.OrganizationID, &events.EventReceived{
		BaseEvent: events.NewBaseEvent(events.EventReceivedEvent, ""),
		Event:     event,
	})
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(EventAcceptedResponse{
		EventID: event.ID,
		Status:  "accepted",
	})
}

func (h *APIHandlers) CreatePromoBatch(c fiber.Ctx) error {
	var req CreatePromoBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if !req.ValidUntil.After(req.ValidFrom) {
		return badRequest(c, "valid_until must be after valid_from")
	}

	batch := &models.PromoCodeBatch{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		Active:         req.Active,
	}

	if err := h.persistence.PromoCodes().SaveBatch(c.Context(), batch); err != nil {
		return internalError(c, err)
	}

	for _, code := range req.Codes {
		err := h.persistence.PromoCodes().SaveCode(c.Context(), &models.PromoCode{
			BatchID: batch.ID,
			Code:    code,
		})
		if err != nil {
			return internalError(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(batch)
}

func (h *APIHandlers) AddPromoCodes(c fiber.Ctx) error {
	batchID := c.Params("id")
	if batchID == "" {
		return badRequest(c, "Batch ID is required")
	}

	var req AddPromoCodesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	batch, err := h.persistence.PromoCodes().GetBatch(c.Context(), req.OrganizationID, batchID)
	if err != nil {
		return handleServiceError(c, err)
	}

	for _, code := range req.Codes {
		err := h.persistence.PromoCodes().SaveCode(c.Context(), &models.PromoCode{
			BatchID: batch.ID,
			Code:    code,
		})
		if err != nil {
			return internalError(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"batch_id":    batch.ID,
		"codes_added": len(req.Codes),
	})
}

func (h *APIHandlers) GetPromoBatch(c fiber.Ctx) error {
	batchID := c.Params("id")
	if batchID == "" {
		return badRequest(c, "Batch ID is required")
	}

	organizationID := c.Query("organization_id")
	if organizationID == "" {
		return badRequest(c, "organization_id query parameter is required")
	}

	batch, err := h.persistence.PromoCodes().GetBatch(c.Context(), organizationID, batchID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(batch)
}

// GetActionTypes lists the registered action types and their config schemas.
func (h *APIHandlers) GetActionTypes(c fiber.Ctx) error {
	factories := h.registry.AvailableActions()

	types := make([]ActionTypeResponse, 0, len(factories))
	for _, factory := range factories {
		types = append(types, ActionTypeResponse{
			ID:          factory.ID(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	return c.JSON(fiber.Map{"actions": types})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
