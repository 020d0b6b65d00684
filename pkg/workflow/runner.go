// Package workflow drives end-to-end execution of workflows against
// triggering events, persisting execution and step audit records as it goes.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/journeyd/journeyd/pkg/eventbus"
	"github.com/journeyd/journeyd/pkg/events"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/otelhelper"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/protocol"
	"github.com/journeyd/journeyd/pkg/registry"
	"github.com/journeyd/journeyd/pkg/trigger"
)

const triggerNotMatchedReason = "trigger_not_matched"

// ErrWorkflowInactive is returned when a run is requested for a workflow
// that is disabled or soft-deleted.
var ErrWorkflowInactive = errors.New("workflow is not active")

// Runner executes workflows. Each run owns its own execution context; one
// Runner instance is safe for concurrent runs.
type Runner struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	matcher     *trigger.Matcher
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithEventPublisher makes the runner publish lifecycle events on the bus.
func WithEventPublisher(publisher eventbus.EventPublisher) RunnerOption {
	return func(r *Runner) {
		r.publisher = publisher
	}
}

// WithTracer sets the tracer used for run and step spans.
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// NewRunner creates a workflow runner.
func NewRunner(
	store persistence.Persistence,
	reg *registry.Registry,
	logger *slog.Logger,
	opts ...RunnerOption,
) *Runner {
	runner := &Runner{
		persistence: store,
		registry:    reg,
		matcher:     trigger.NewMatcher(logger),
		tracer:      noop.NewTracerProvider().Tracer("workflow"),
		logger:      logger.With("module", "workflow_runner"),
	}

	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

// ProcessEvent runs every active workflow of the event's organization whose
// trigger matches the event. Runs are sequential; one failed run does not
// prevent the remaining workflows from running.
func (r *Runner) ProcessEvent(ctx context.Context, event *models.Event) ([]*models.WorkflowExecution, error) {
	candidates, err := r.persistence.Workflows().ActiveByCategory(ctx, event.OrganizationID, event.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate workflows: %w", err)
	}

	matched := r.matcher.MatchWorkflows(event, candidates)

	executions := make([]*models.WorkflowExecution, 0, len(matched))

	for _, wf := range matched {
		r.publishEvent(ctx, wf.OrganizationID, &events.WorkflowTriggered{
			BaseEvent: events.NewBaseEvent(events.WorkflowTriggeredEvent, wf.ID),
			EventID:   event.ID,
		})

		execution, err := r.Run(ctx, wf.ID, event)
		if err != nil {
			r.logger.ErrorContext(ctx, "Workflow run failed",
				"workflow_id", wf.ID, "error", err)
		}

		if execution != nil {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

// Run executes one workflow against one event. The returned execution is the
// finalized record; err is non-nil when the run ended in the failed state.
func (r *Runner) Run(ctx context.Context, workflowID string, event *models.Event) (*models.WorkflowExecution, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.EventIDKey, event.ID),
		attribute.String(otelhelper.EventCategoryKey, event.Category),
	)
	defer span.End()

	executionID, err := newID()
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, executionID))

	logger := r.logger.With(
		"workflow_id", workflowID,
		"execution_id", executionID,
	)
	logger.InfoContext(ctx, "Starting workflow run", "event_id", event.ID)

	execution := &models.WorkflowExecution{
		ID:             executionID,
		WorkflowID:     workflowID,
		OrganizationID: event.OrganizationID,
		Status:         models.ExecutionStatusRunning,
		TriggerEvent:   event,
		StartedAt:      time.Now().UTC(),
	}

	err = r.persistence.Executions().CreateExecution(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	r.publishEvent(ctx, event.OrganizationID, &events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, workflowID),
		ExecutionID: executionID,
	})

	run := &runState{
		runner:    r,
		execution: execution,
		logger:    logger,
		stepOrder: 0,
	}

	wf, err := r.loadWorkflow(ctx, run, workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return r.finalizeFailed(ctx, run, err)
	}

	matched, err := run.triggerValidation(ctx, wf, event)
	if err != nil {
		otelhelper.SetError(span, err)

		return r.finalizeFailed(ctx, run, err)
	}

	if !matched {
		// An unmatched trigger is not an error: the run completes with
		// success=false.
		return r.finalize(ctx, run, models.ExecutionStatusCompleted, map[string]any{
			"success": false,
			"reason":  triggerNotMatchedReason,
		}), nil
	}

	executionCtx := models.NewExecutionContext(executionID, wf, event)

	results, runErr := run.executeActions(ctx, wf, executionCtx)
	if runErr != nil {
		otelhelper.SetError(span, runErr)

		return r.finalizeFailed(ctx, run, runErr)
	}

	success := overallSuccess(results)
	results["success"] = success

	status := models.ExecutionStatusCompleted
	if !success {
		status = models.ExecutionStatusFailed
	}

	finalized := r.finalize(ctx, run, status, results)
	if !success {
		return finalized, fmt.Errorf("workflow %s: one or more actions reported failure", workflowID)
	}

	logger.InfoContext(ctx, "Workflow run completed",
		"total_duration_ms", finalized.TotalDurationMs)

	return finalized, nil
}

func (r *Runner) loadWorkflow(ctx context.Context, run *runState, workflowID string) (*models.Workflow, error) {
	wf, err := r.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		run.recordFailedStep(ctx, models.StepTypeDataProcessing, "load_workflow", err)

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	if !wf.IsActive() {
		err = fmt.Errorf("workflow %s: %w", workflowID, ErrWorkflowInactive)
		run.recordFailedStep(ctx, models.StepTypeDataProcessing, "load_workflow", err)

		return nil, err
	}

	return wf, nil
}

// finalize sets the terminal status, results and total duration exactly once.
func (r *Runner) finalize(
	ctx context.Context,
	run *runState,
	status models.ExecutionStatus,
	results map[string]any,
) *models.WorkflowExecution {
	execution := run.execution

	now := time.Now().UTC()
	execution.Status = status
	execution.Results = results
	execution.CompletedAt = &now
	execution.TotalDurationMs = now.Sub(execution.StartedAt).Milliseconds()

	err := r.persistence.Executions().UpdateExecution(ctx, execution)
	if err != nil {
		run.logger.ErrorContext(ctx, "Failed to finalize execution record", "error", err)
	}

	switch status {
	case models.ExecutionStatusCompleted:
		r.publishEvent(ctx, execution.OrganizationID, &events.ExecutionCompleted{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
			Results:     results,
			DurationMs:  execution.TotalDurationMs,
		})
	case models.ExecutionStatusFailed:
		message, _ := results["error"].(string)

		r.publishEvent(ctx, execution.OrganizationID, &events.ExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
			Error:       message,
			DurationMs:  execution.TotalDurationMs,
		})
	}

	return execution
}

func (r *Runner) finalizeFailed(ctx context.Context, run *runState, cause error) (*models.WorkflowExecution, error) {
	execution := r.finalize(ctx, run, models.ExecutionStatusFailed, map[string]any{
		"success": false,
		"error":   cause.Error(),
	})

	return execution, cause
}

func (r *Runner) publishEvent(ctx context.Context, key string, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	err := r.publisher.Publish(ctx, key, event)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}

// runState tracks per-run step bookkeeping.
type runState struct {
	runner    *Runner
	execution *models.WorkflowExecution
	logger    *slog.Logger
	stepOrder int
}

// startStep creates the step audit row with status running.
func (s *runState) startStep(
	ctx context.Context,
	stepType models.StepType,
	stepName string,
	input map[string]any,
) *models.ExecutionStep {
	s.stepOrder++

	id, err := newID()
	if err != nil {
		id = s.execution.ID + fmt.Sprintf("-step-%d", s.stepOrder)
	}

	step := &models.ExecutionStep{
		ID:          id,
		ExecutionID: s.execution.ID,
		StepOrder:   s.stepOrder,
		StepType:    stepType,
		StepName:    stepName,
		Status:      models.ExecutionStatusRunning,
		InputData:   input,
		StartTime:   time.Now().UTC(),
	}

	err = s.runner.persistence.Executions().CreateStep(ctx, step)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create step record",
			"step_name", stepName, "error", err)
	}

	return step
}

// finishStep updates the step row to its terminal status exactly once.
func (s *runState) finishStep(
	ctx context.Context,
	step *models.ExecutionStep,
	status models.ExecutionStatus,
	output map[string]any,
	stepErr error,
) {
	step.Status = status
	step.OutputData = output
	step.DurationMs = time.Since(step.StartTime).Milliseconds()

	if stepErr != nil {
		step.ErrorMessage = stepErr.Error()
	}

	err := s.runner.persistence.Executions().UpdateStep(ctx, step)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update step record",
			"step_name", step.StepName, "error", err)
	}
}

func (s *runState) recordFailedStep(ctx context.Context, stepType models.StepType, stepName string, cause error) {
	step := s.startStep(ctx, stepType, stepName, nil)
	s.finishStep(ctx, step, models.ExecutionStatusFailed, nil, cause)
}

// triggerValidation runs the first audit step. A mismatch completes the step
// normally with matched=false in its output.
func (s *runState) triggerValidation(ctx context.Context, wf *models.Workflow, event *models.Event) (bool, error) {
	step := s.startStep(ctx, models.StepTypeTriggerValidation, "trigger_validation", map[string]any{
		"event_id":   event.ID,
		"category":   event.Category,
		"event_type": wf.Trigger.EventType,
	})

	matched := trigger.Matches(&wf.Trigger, event)

	s.finishStep(ctx, step, models.ExecutionStatusCompleted, map[string]any{
		"matched": matched,
	}, nil)

	if !matched {
		s.logger.InfoContext(ctx, "Trigger did not match event", "event_id", event.ID)
	}

	return matched, nil
}

// executeActions runs the workflow's actions strictly in declared order,
// stopping on the first failure. Remaining actions are never attempted.
func (s *runState) executeActions(
	ctx context.Context,
	wf *models.Workflow,
	executionCtx *models.ExecutionContext,
) (map[string]any, error) {
	results := make(map[string]any, len(wf.Actions))

	for _, item := range wf.Actions {
		result, err := s.executeAction(ctx, item, executionCtx)
		if err != nil {
			return nil, err
		}

		results[item.ID] = result
	}

	return results, nil
}

func (s *runState) executeAction(
	ctx context.Context,
	item *models.ActionItem,
	executionCtx *models.ExecutionContext,
) (map[string]any, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.runner.tracer, "workflow.action",
		attribute.String(otelhelper.ActionIDKey, item.ID),
		attribute.String(otelhelper.ActionTypeKey, string(item.Type)),
	)
	defer span.End()

	stepName := item.Name
	if stepName == "" {
		stepName = string(item.Type)
	}

	config := make(map[string]any, len(item.Configuration)+1)
	for k, v := range item.Configuration {
		config[k] = v
	}

	config["id"] = item.ID

	step := s.startStep(ctx, models.StepTypeActionExecution, stepName, config)

	action, err := s.runner.registry.CreateAction(ctx, string(item.Type), config)
	if err != nil {
		err = fmt.Errorf("failed to create action %s: %w", item.ID, err)
		s.finishStep(ctx, step, models.ExecutionStatusFailed, nil, err)
		otelhelper.SetError(span, err)

		return nil, err
	}

	result, err := action.Execute(ctx, *executionCtx, s.logger)
	if err != nil {
		err = fmt.Errorf("action %s failed: %w", item.ID, err)
		s.finishStep(ctx, step, models.ExecutionStatusFailed, nil, err)
		otelhelper.SetError(span, err)

		return nil, err
	}

	mergeResult(executionCtx, item.ID, result)
	s.finishStep(ctx, step, models.ExecutionStatusCompleted, result, nil)

	return result, nil
}

// mergeResult stores the raw result under the action's ID and folds the
// action's declared context updates into the top-level variable scope.
func mergeResult(executionCtx *models.ExecutionContext, actionID string, result map[string]any) {
	executionCtx.StepResults[actionID] = result

	updates, ok := result[protocol.ContextUpdatesKey].(map[string]any)
	if !ok {
		return
	}

	for name, value := range updates {
		executionCtx.Vars[name] = value
	}
}

// overallSuccess is the logical AND over attempted action results: a result
// counts as failed only when it carries success=false.
func overallSuccess(results map[string]any) bool {
	for _, raw := range results {
		result, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		if success, ok := result["success"].(bool); ok && !success {
			return false
		}
	}

	return true
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	return id.String(), nil
}
