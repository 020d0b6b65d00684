package pushnotification

import (
	"context"

	"github.com/journeyd/journeyd/pkg/protocol"
	"github.com/journeyd/journeyd/pkg/providers/audience"
	"github.com/journeyd/journeyd/pkg/providers/push"
)

// ActionFactory creates push notification actions.
type ActionFactory struct {
	sender   push.Sender
	audience audience.Resolver
}

// NewActionFactory creates a factory bound to the delivery collaborators.
func NewActionFactory(sender push.Sender, resolver audience.Resolver) *ActionFactory {
	return &ActionFactory{sender: sender, audience: resolver}
}

// Create creates a new push notification action from the given configuration.
func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.sender, f.audience)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "push_notification"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Push Notification"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Sends a push notification to all users, a segment, or a specific user list."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Notification title. Supports {path} tokens resolved against the execution context.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Notification body text.",
			},
			"image_url": map[string]any{
				"type":        "string",
				"description": "Optional image shown with the notification.",
			},
			"deep_link": map[string]any{
				"type":        "string",
				"description": "Optional link opened when the notification is tapped.",
			},
			"data": map[string]any{
				"type":        "object",
				"description": "Arbitrary key-value payload delivered with the notification.",
			},
			"target_users": map[string]any{
				"type":        "string",
				"description": "Audience selection mode.",
				"default":     TargetAll,
				"enum":        []string{TargetAll, TargetSegment, TargetSpecific},
			},
			"segment_id": map[string]any{
				"type":        "string",
				"description": "Segment to target when target_users is 'segment'.",
			},
			"user_ids": map[string]any{
				"type":        "array",
				"description": "User IDs to target when target_users is 'specific'.",
				"items":       map[string]any{"type": "string"},
			},
			"variable_mappings": map[string]any{
				"type":        "object",
				"description": "Per-field expressions resolved against the execution context, overriding the static field values.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
		},
		"required":             []string{"title"},
		"additionalProperties": false,
	}
}
