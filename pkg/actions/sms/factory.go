package sms

import (
	"context"

	"github.com/journeyd/journeyd/pkg/protocol"
	smsprovider "github.com/journeyd/journeyd/pkg/providers/sms"
)

// ActionFactory creates SMS message actions.
type ActionFactory struct {
	client smsprovider.Client
}

// NewActionFactory creates a factory bound to the SMS provider client.
func NewActionFactory(client smsprovider.Client) *ActionFactory {
	return &ActionFactory{client: client}
}

// Create creates a new SMS message action from the given configuration.
func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.client)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "sms_message"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "SMS Message"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Sends an SMS message, resolving phone numbers and body variables from the execution context."
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
			"body": map[string]any{
				"type":        "string",
				"description": "Message body. Supports {path} tokens.",
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
