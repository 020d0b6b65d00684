package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/registry"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Workflow is the management service for workflow definitions.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(store persistence.Persistence, reg *registry.Registry) *Workflow {
	return &Workflow{
		persistence: store,
		registry:    reg,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	Limit          int
	Offset         int
	OrganizationID string
	Status         *models.WorkflowStatus
}

// ListWorkflowsResponse contains the result of listing workflows.
type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int                `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// ListWorkflows retrieves workflows with filtering and pagination, most
// recently created first.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	err := w.validateListWorkflowsRequest(&req)
	if err != nil {
		return nil, err
	}

	all, err := w.persistence.Workflows().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	filtered := make([]*models.Workflow, 0, len(all))

	for _, workflow := range all {
		if req.OrganizationID != "" && workflow.OrganizationID != req.OrganizationID {
			continue
		}

		if req.Status != nil && workflow.Status != *req.Status {
			continue
		}

		filtered = append(filtered, workflow)
	}

	total := len(filtered)

	start := min(req.Offset, total)
	end := min(start+req.Limit, total)

	return &ListWorkflowsResponse{
		Workflows:   filtered[start:end],
		TotalCount:  total,
		HasNextPage: end < total,
	}, nil
}

func (w *Workflow) validateListWorkflowsRequest(req *ListWorkflowsRequest) error {
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}

	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	req.OrganizationID = strings.TrimSpace(req.OrganizationID)

	if req.Status != nil {
		allowed := []models.WorkflowStatus{
			models.WorkflowStatusActive,
			models.WorkflowStatusInactive,
		}

		if !slices.Contains(allowed, *req.Status) {
			return NewValidationError(
				"ListWorkflows",
				"INVALID_STATUS",
				fmt.Sprintf("invalid status '%s'", *req.Status),
				ErrInvalidStatus,
			)
		}
	}

	return nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.Workflows().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// Create validates and persists a new workflow. Workflows start inactive
// unless the caller explicitly activates them.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	err := w.validateDefinition(workflow)
	if err != nil {
		return nil, err
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusInactive
	}

	err = w.persistence.Workflows().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update validates and persists changes to an existing workflow, preserving
// its creation time.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	existing, err := w.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	err = w.validateDefinition(workflow)
	if err != nil {
		return nil, err
	}

	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt

	err = w.persistence.Workflows().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// Delete soft deletes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	_, err := w.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	err = w.persistence.Workflows().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// validateDefinition checks the cross-field rules the struct validator
// cannot express: the trigger must name an event type, the status must be a
// known one, and every action type must be registered.
func (w *Workflow) validateDefinition(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if strings.TrimSpace(workflow.OrganizationID) == "" {
		return ErrOrganizationRequired
	}

	if workflow.Trigger.EventType == "" {
		return ErrTriggerRequired
	}

	if workflow.Status != "" &&
		workflow.Status != models.WorkflowStatusActive &&
		workflow.Status != models.WorkflowStatusInactive {
		return NewValidationError(
			"validateDefinition",
			"INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", workflow.Status),
			ErrInvalidStatus,
		)
	}

	for _, action := range workflow.Actions {
		if !w.registry.IsActionRegistered(string(action.Type)) {
			return NewValidationError(
				"validateDefinition",
				"UNKNOWN_ACTION_TYPE",
				fmt.Sprintf("unknown action type '%s'", action.Type),
				ErrActionTypeUnknown,
			)
		}
	}

	return nil
}
