package file

import (
	"context"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
)

const workflowsDir = "workflows"

// WorkflowRepository stores workflow definitions as JSON files.
type WorkflowRepository struct {
	persistence *Persistence
}

// GetAll returns all non-deleted workflows sorted by creation time descending.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	return r.getAllLocked(ctx)
}

func (r *WorkflowRepository) getAllLocked(_ context.Context) ([]*models.Workflow, error) {
	names, err := r.persistence.listJSON(workflowsDir)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(names))

	for _, name := range names {
		var workflow models.Workflow

		err := r.persistence.readJSON(workflowsDir, name, &workflow)
		if err != nil {
			return nil, err
		}

		if workflow.DeletedAt != nil {
			continue
		}

		workflows = append(workflows, &workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

// GetByID returns the workflow or persistence.ErrWorkflowNotFound.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	return r.getByIDLocked(ctx, id)
}

func (r *WorkflowRepository) getByIDLocked(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	err := r.persistence.readJSON(workflowsDir, id, &workflow)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, err
	}

	if workflow.DeletedAt != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	return &workflow, nil
}

// ActiveByCategory returns the organization's active workflows whose
// trigger event type equals category.
func (r *WorkflowRepository) ActiveByCategory(ctx context.Context, organizationID, category string) ([]*models.Workflow, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	all, err := r.getAllLocked(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*models.Workflow

	for _, workflow := range all {
		if workflow.OrganizationID != organizationID {
			continue
		}

		if !workflow.IsActive() || workflow.Trigger.EventType != category {
			continue
		}

		matches = append(matches, workflow)
	}

	return matches, nil
}

// Save persists the workflow, assigning an ID and timestamps when missing.
func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		workflow.ID = id.String()
	}

	return r.persistence.writeJSON(workflowsDir, workflow.ID, workflow)
}

// Delete soft deletes the workflow by setting its deleted_at timestamp.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	workflow, err := r.getByIDLocked(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	workflow.DeletedAt = &now
	workflow.UpdatedAt = now

	return r.persistence.writeJSON(workflowsDir, workflow.ID, workflow)
}
