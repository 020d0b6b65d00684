package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
)

// ExecutionRepository handles execution and step audit records.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// CreateExecution inserts the initial (running) execution record.
func (r *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	triggerEventJSON, resultsJSON, err := marshalExecutionJSON(execution)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflow_executions (id, workflow_id, organization_id,
			status, trigger_event, results, started_at, completed_at, total_duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.OrganizationID,
		execution.Status,
		triggerEventJSON,
		resultsJSON,
		execution.StartedAt,
		execution.CompletedAt,
		execution.TotalDurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}

	return nil
}

// UpdateExecution finalizes the execution record.
func (r *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	triggerEventJSON, resultsJSON, err := marshalExecutionJSON(execution)
	if err != nil {
		return err
	}

	query := `
		UPDATE workflow_executions SET
			status = $2,
			trigger_event = $3,
			results = $4,
			completed_at = $5,
			total_duration_ms = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		execution.ID,
		execution.Status,
		triggerEventJSON,
		resultsJSON,
		execution.CompletedAt,
		execution.TotalDurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrExecutionNotFound
	}

	return nil
}

// GetExecution returns the execution or persistence.ErrExecutionNotFound.
func (r *ExecutionRepository) GetExecution(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `
		SELECT id, workflow_id, organization_id, status, trigger_event,
			results, started_at, completed_at, total_duration_ms
		FROM workflow_executions
		WHERE id = $1
	`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// ListByWorkflow returns the workflow's executions, most recent first.
func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT id, workflow_id, organization_id, status, trigger_event,
			results, started_at, completed_at, total_duration_ms
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer r.closeRows(ctx, rows)

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

// CreateStep inserts a new (running) step record.
func (r *ExecutionRepository) CreateStep(ctx context.Context, step *models.ExecutionStep) error {
	inputJSON, outputJSON, err := marshalStepJSON(step)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO execution_steps (id, execution_id, step_order, step_type,
			step_name, status, input_data, output_data, error_message, start_time, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		step.ID,
		step.ExecutionID,
		step.StepOrder,
		step.StepType,
		step.StepName,
		step.Status,
		inputJSON,
		outputJSON,
		step.ErrorMessage,
		step.StartTime,
		step.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to create step: %w", err)
	}

	return nil
}

// UpdateStep updates the step record to its terminal state.
func (r *ExecutionRepository) UpdateStep(ctx context.Context, step *models.ExecutionStep) error {
	inputJSON, outputJSON, err := marshalStepJSON(step)
	if err != nil {
		return err
	}

	query := `
		UPDATE execution_steps SET
			status = $2,
			input_data = $3,
			output_data = $4,
			error_message = $5,
			duration_ms = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		step.ID,
		step.Status,
		inputJSON,
		outputJSON,
		step.ErrorMessage,
		step.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to update step: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrStepNotFound
	}

	return nil
}

// StepsByExecution returns the execution's steps in step order.
func (r *ExecutionRepository) StepsByExecution(ctx context.Context, executionID string) ([]*models.ExecutionStep, error) {
	query := `
		SELECT id, execution_id, step_order, step_type, step_name, status,
			input_data, output_data, error_message, start_time, duration_ms
		FROM execution_steps
		WHERE execution_id = $1
		ORDER BY step_order
	`

	rows, err := r.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}

	defer r.closeRows(ctx, rows)

	steps := make([]*models.ExecutionStep, 0)

	for rows.Next() {
		var step models.ExecutionStep

		var inputJSON, outputJSON []byte

		err := rows.Scan(
			&step.ID,
			&step.ExecutionID,
			&step.StepOrder,
			&step.StepType,
			&step.StepName,
			&step.Status,
			&inputJSON,
			&outputJSON,
			&step.ErrorMessage,
			&step.StartTime,
			&step.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		if inputJSON != nil {
			err := json.Unmarshal(inputJSON, &step.InputData)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal step input: %w", err)
			}
		}

		if outputJSON != nil {
			err := json.Unmarshal(outputJSON, &step.OutputData)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal step output: %w", err)
			}
		}

		steps = append(steps, &step)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating steps: %w", err)
	}

	return steps, nil
}

func (r *ExecutionRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

func marshalExecutionJSON(execution *models.WorkflowExecution) (triggerEventJSON, resultsJSON []byte, err error) {
	if execution.TriggerEvent != nil {
		triggerEventJSON, err = json.Marshal(execution.TriggerEvent)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal trigger event: %w", err)
		}
	}

	if execution.Results != nil {
		resultsJSON, err = json.Marshal(execution.Results)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal results: %w", err)
		}
	}

	return triggerEventJSON, resultsJSON, nil
}

func marshalStepJSON(step *models.ExecutionStep) (inputJSON, outputJSON []byte, err error) {
	if step.InputData != nil {
		inputJSON, err = json.Marshal(step.InputData)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal step input: %w", err)
		}
	}

	if step.OutputData != nil {
		outputJSON, err = json.Marshal(step.OutputData)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal step output: %w", err)
		}
	}

	return inputJSON, outputJSON, nil
}

func scanExecution(scanner interface {
	Scan(dest ...any) error
}) (*models.WorkflowExecution, error) {
	var execution models.WorkflowExecution

	var triggerEventJSON, resultsJSON []byte

	err := scanner.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.OrganizationID,
		&execution.Status,
		&triggerEventJSON,
		&resultsJSON,
		&execution.StartedAt,
		&execution.CompletedAt,
		&execution.TotalDurationMs,
	)
	if err != nil {
		return nil, err
	}

	if triggerEventJSON != nil {
		err := json.Unmarshal(triggerEventJSON, &execution.TriggerEvent)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger event: %w", err)
		}
	}

	if resultsJSON != nil {
		err := json.Unmarshal(resultsJSON, &execution.Results)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}

	return &execution, nil
}
