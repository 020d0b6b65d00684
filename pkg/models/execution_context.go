package models

// ExecutionContext is the mutable accumulator threaded through one
// execution's action sequence. It is owned exclusively by the runner for the
// lifetime of a single run and never shared across runs.
type ExecutionContext struct {
	ID             string         `json:"id"`
	WorkflowID     string         `json:"workflow_id"`
	OrganizationID string         `json:"organization_id"`
	Event          *Event         `json:"event,omitempty"`
	Vars           map[string]any `json:"vars,omitempty"`
	StepResults    map[string]any `json:"step_results,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// NewExecutionContext seeds the context for one run. Vars starts with the
// flattened trigger event under "event"; completed actions extend it with
// their named outputs.
func NewExecutionContext(executionID string, workflow *Workflow, event *Event) *ExecutionContext {
	vars := map[string]any{}
	if event != nil {
		vars["event"] = event.AsMap()
	}

	return &ExecutionContext{
		ID:             executionID,
		WorkflowID:     workflow.ID,
		OrganizationID: workflow.OrganizationID,
		Event:          event,
		Vars:           vars,
		StepResults:    make(map[string]any),
		Metadata:       make(map[string]any),
	}
}

// Env returns the variable scope exposed to expressions: every Vars key as a
// top-level binding plus step results under "steps".
func (c *ExecutionContext) Env() map[string]any {
	env := make(map[string]any, len(c.Vars)+1)
	for k, v := range c.Vars {
		env[k] = v
	}

	env["steps"] = c.StepResults

	return env
}
