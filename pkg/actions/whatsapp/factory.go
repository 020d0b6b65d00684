package whatsapp

import (
	"context"

	"github.com/journeyd/journeyd/pkg/protocol"
	whatsappprovider "github.com/journeyd/journeyd/pkg/providers/whatsapp"
)

// ActionFactory creates WhatsApp message actions.
type ActionFactory struct {
	client whatsappprovider.Client
}

// NewActionFactory creates a factory bound to the WhatsApp provider client.
func NewActionFactory(client whatsappprovider.Client) *ActionFactory {
	return &ActionFactory{client: client}
}

// Create creates a new WhatsApp message action from the given configuration.
func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.client)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "whatsapp_message"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "WhatsApp Message"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Sends a WhatsApp message, resolving phone numbers and variables from the execution context."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to_phone": map[string]any{
				"type":        "string",
				"description": "Destination phone number. May be overridden by a variable mapping.",
			},
			"from_phone": map[string]any{
				"type":        "string",
				"description": "Sender number. Defaults to the organization's configured number.",
			},
			"template_name": map[string]any{
				"type":        "string",
				"description": "Approved template to send. Required when no body is set.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Free-form message body. Supports {path} tokens.",
			},
			"parameters": map[string]any{
				"type":        "object",
				"description": "Template parameters, each resolved as an expression against the execution context.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
			"variable_mappings": map[string]any{
				"type":        "object",
				"description": "Per-field expressions overriding static values (to_phone, from_phone, body).",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
		},
		"additionalProperties": false,
	}
}
