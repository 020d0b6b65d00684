package models

import "time"

// ExecutionStatus is the lifecycle state of an execution or a step.
// running is the only non-terminal state.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// StepType classifies execution steps for the audit trail.
type StepType string

const (
	StepTypeTriggerValidation StepType = "trigger_validation"
	StepTypeActionExecution   StepType = "action_execution"
	StepTypeDataProcessing    StepType = "data_processing"
)

// WorkflowExecution is one end-to-end run of a workflow against one
// triggering event. Created with status running at run start and finalized
// exactly once with a terminal status.
type WorkflowExecution struct {
	ID              string          `json:"id"`
	WorkflowID      string          `json:"workflow_id" validate:"required"`
	OrganizationID  string          `json:"organization_id"`
	Status          ExecutionStatus `json:"status"`
	TriggerEvent    *Event          `json:"trigger_event,omitempty"`
	Results         map[string]any  `json:"results,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	TotalDurationMs int64           `json:"total_duration_ms"`
}

// ExecutionStep is one step's attempt within an execution, individually
// logged. Created with status running before the step runs and updated to a
// terminal status exactly once afterwards.
type ExecutionStep struct {
	ID           string          `json:"id"`
	ExecutionID  string          `json:"execution_id" validate:"required"`
	StepOrder    int             `json:"step_order"`
	StepType     StepType        `json:"step_type"`
	StepName     string          `json:"step_name"`
	Status       ExecutionStatus `json:"status"`
	InputData    map[string]any  `json:"input_data,omitempty"`
	OutputData   map[string]any  `json:"output_data,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartTime    time.Time       `json:"start_time"`
	DurationMs   int64           `json:"duration_ms"`
}
