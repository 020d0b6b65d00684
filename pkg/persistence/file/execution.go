package file

import (
	"context"
	"errors"
	"os"
	"sort"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
)

const (
	executionsDir = "executions"
	stepsDir      = "steps"
)

// ExecutionRepository stores execution and step audit records as JSON files.
// Steps are grouped per execution in a single file.
type ExecutionRepository struct {
	persistence *Persistence
}

// CreateExecution writes the initial (running) execution record.
func (r *ExecutionRepository) CreateExecution(_ context.Context, execution *models.WorkflowExecution) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	return r.persistence.writeJSON(executionsDir, execution.ID, execution)
}

// UpdateExecution finalizes the execution record.
func (r *ExecutionRepository) UpdateExecution(_ context.Context, execution *models.WorkflowExecution) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	return r.persistence.writeJSON(executionsDir, execution.ID, execution)
}

// GetExecution returns the execution or persistence.ErrExecutionNotFound.
func (r *ExecutionRepository) GetExecution(_ context.Context, id string) (*models.WorkflowExecution, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	var execution models.WorkflowExecution

	err := r.persistence.readJSON(executionsDir, id, &execution)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, err
	}

	return &execution, nil
}

// ListByWorkflow returns the workflow's executions, most recent first.
func (r *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	names, err := r.persistence.listJSON(executionsDir)
	if err != nil {
		return nil, err
	}

	var executions []*models.WorkflowExecution

	for _, name := range names {
		var execution models.WorkflowExecution

		err := r.persistence.readJSON(executionsDir, name, &execution)
		if err != nil {
			return nil, err
		}

		if execution.WorkflowID == workflowID {
			executions = append(executions, &execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

// CreateStep appends a new (running) step record to the execution's step file.
func (r *ExecutionRepository) CreateStep(ctx context.Context, step *models.ExecutionStep) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	steps, err := r.stepsLocked(step.ExecutionID)
	if err != nil {
		return err
	}

	steps = append(steps, step)

	return r.persistence.writeJSON(stepsDir, step.ExecutionID, steps)
}

// UpdateStep replaces the step record with its terminal state.
func (r *ExecutionRepository) UpdateStep(_ context.Context, step *models.ExecutionStep) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	steps, err := r.stepsLocked(step.ExecutionID)
	if err != nil {
		return err
	}

	for i, existing := range steps {
		if existing.ID == step.ID {
			steps[i] = step

			return r.persistence.writeJSON(stepsDir, step.ExecutionID, steps)
		}
	}

	return persistence.ErrStepNotFound
}

// StepsByExecution returns the execution's steps in step order.
func (r *ExecutionRepository) StepsByExecution(_ context.Context, executionID string) ([]*models.ExecutionStep, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	steps, err := r.stepsLocked(executionID)
	if err != nil {
		return nil, err
	}

	sort.Slice(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})

	return steps, nil
}

func (r *ExecutionRepository) stepsLocked(executionID string) ([]*models.ExecutionStep, error) {
	var steps []*models.ExecutionStep

	err := r.persistence.readJSON(stepsDir, executionID, &steps)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	return steps, nil
}
