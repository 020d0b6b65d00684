package condition

import (
	"context"

	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/protocol"
)

// ActionFactory creates condition actions.
type ActionFactory struct {
	engine *expression.Engine
}

// NewActionFactory creates a factory sharing one expression engine, so
// compiled condition programs are reused across executions.
func NewActionFactory(engine *expression.Engine) *ActionFactory {
	return &ActionFactory{engine: engine}
}

// Create creates a new condition action from the given configuration.
func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.engine)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "condition"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Condition"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Evaluates a boolean condition against the execution context and records the result."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Sandboxed boolean expression over context variables. Mutually exclusive with operands.",
				"examples": []string{
					"event.value > 100",
					"event.name == 'purchase' and steps.check.result",
				},
			},
			"left_operand": map[string]any{
				"type":        "string",
				"description": "Expression resolved against the context for the left side.",
			},
			"right_operand": map[string]any{
				"description": "Literal value, or an expression string resolved against the context.",
			},
			"condition_type": map[string]any{
				"type":        "string",
				"description": "Comparison operator for operand mode.",
				"default":     OpEquals,
				"enum": []string{
					OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpContains, OpNotContains,
				},
			},
			"output_variable": map[string]any{
				"type":        "string",
				"description": "Context variable name the boolean result is stored under.",
				"default":     "conditionResult",
			},
		},
		"additionalProperties": false,
	}
}
