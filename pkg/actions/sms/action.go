// Package sms provides the SMS message workflow action.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
	smsprovider "github.com/journeyd/journeyd/pkg/providers/sms"
)

var (
	// ErrToPhoneRequired is returned when no destination number resolves.
	ErrToPhoneRequired = errors.New("sms 'to' phone number is required")
	// ErrBodyRequired is returned when the message has no body.
	ErrBodyRequired = errors.New("sms message body is required")
)

// Action resolves message fields against the execution context and delivers
// one SMS message.
type Action struct {
	ID               string
	ToPhone          string
	FromPhone        string
	Body             string
	VariableMappings map[string]string

	client smsprovider.Client
}

// NewAction creates an SMS message action from configuration.
func NewAction(config map[string]any, client smsprovider.Client) (*Action, error) {
	actionID, _ := config["id"].(string)
	toPhone, _ := config["to_phone"].(string)
	fromPhone, _ := config["from_phone"].(string)
	body, _ := config["body"].(string)

	mappings := stringMap(config["variable_mappings"])

	if toPhone == "" && mappings["to_phone"] == "" {
		return nil, fmt.Errorf("missing 'to_phone' in configuration: %w", ErrToPhoneRequired)
	}

	if body == "" && mappings["body"] == "" {
		return nil, ErrBodyRequired
	}

	return &Action{
		ID:               actionID,
		ToPhone:          toPhone,
		FromPhone:        fromPhone,
		Body:             body,
		VariableMappings: mappings,
		client:           client,
	}, nil
}

// Execute resolves the message fields and sends the message.
func (a *Action) Execute(
	ctx context.Context,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) (map[string]any, error) {
	logger = logger.With("module", "sms_message_action")
	logger.InfoContext(ctx, "Executing SMS message action")

	env := executionCtx.Env()
	fields := expression.ResolveMappings(a.VariableMappings, env, map[string]any{
		"to_phone":   a.ToPhone,
		"from_phone": a.FromPhone,
		"body":       a.Body,
	})

	toPhone := expression.AsString(fields["to_phone"])
	if toPhone == "" {
		return nil, ErrToPhoneRequired
	}

	msg := &smsprovider.Message{
		To:   toPhone,
		From: expression.AsString(fields["from_phone"]),
		Body: expression.AsString(fields["body"]),
	}

	result, err := a.client.SendMessage(ctx, executionCtx.OrganizationID, msg)
	if err != nil {
		return nil, fmt.Errorf("sms delivery failed: %w", err)
	}

	logger.InfoContext(ctx, "SMS message processed",
		"success", result.Success, "message_id", result.MessageID, "status", result.Status)

	return map[string]any{
		"success":    result.Success,
		"message_id": result.MessageID,
		"status":     result.Status,
		"error":      result.Error,
	}, nil
}

// Validate checks the action configuration.
func (a *Action) Validate(_ context.Context) error {
	if a.ToPhone == "" && a.VariableMappings["to_phone"] == "" {
		return ErrToPhoneRequired
	}

	if a.Body == "" && a.VariableMappings["body"] == "" {
		return ErrBodyRequired
	}

	return nil
}

func stringMap(value any) map[string]string {
	result := make(map[string]string)

	raw, ok := value.(map[string]any)
	if !ok {
		return result
	}

	for k, v := range raw {
		if str, ok := v.(string); ok {
			result[k] = str
		}
	}

	return result
}
