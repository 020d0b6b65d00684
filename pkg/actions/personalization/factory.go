package personalization

import (
	"context"

	"github.com/journeyd/journeyd/pkg/protocol"
	"github.com/journeyd/journeyd/pkg/providers/rules"
)

// ActionFactory creates personalization actions.
type ActionFactory struct {
	client rules.Client
}

// NewActionFactory creates a factory bound to the rules API client.
func NewActionFactory(client rules.Client) *ActionFactory {
	return &ActionFactory{client: client}
}

// Create creates a new personalization action from the given configuration.
func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.client)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "personalization"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Personalization Rule"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Creates a personalization rule for a known trigger through the rules API."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	triggers := make([]string, 0, len(triggerConditions))
	for trigger := range triggerConditions {
		triggers = append(triggers, trigger)
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Rule name shown in the personalization dashboard.",
			},
			"trigger": map[string]any{
				"type":        "string",
				"description": "Behavior the rule reacts to. Implies the rule's condition list.",
				"enum":        triggers,
			},
			"placement": map[string]any{
				"type":        "string",
				"description": "Where the personalized content is rendered.",
			},
			"priority": map[string]any{
				"type":        "integer",
				"description": "Order among rules matching the same placement.",
				"default":     0,
			},
			"content": map[string]any{
				"type":        "object",
				"description": "Content payload. String values are resolved as expressions against the execution context.",
			},
			"variable_mappings": map[string]any{
				"type":        "object",
				"description": "Per-field expressions overriding static values (name, placement).",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
		},
		"required":             []string{"name", "trigger"},
		"additionalProperties": false,
	}
}
