// Package whatsapp provides the WhatsApp message workflow action.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
	whatsappprovider "github.com/journeyd/journeyd/pkg/providers/whatsapp"
)

var (
	// ErrToPhoneRequired is returned when no destination number resolves.
	ErrToPhoneRequired = errors.New("whatsapp 'to' phone number is required")
	// ErrMessageContentRequired is returned when neither a body nor a
	// template name is configured.
	ErrMessageContentRequired = errors.New("whatsapp message body or template name is required")
)

// Action resolves message fields against the execution context and delivers
// one WhatsApp message.
type Action struct {
	ID               string
	ToPhone          string
	FromPhone        string
	TemplateName     string
	Body             string
	Parameters       map[string]string
	VariableMappings map[string]string

	client whatsappprovider.Client
}

// NewAction creates a WhatsApp message action from configuration.
func NewAction(config map[string]any, client whatsappprovider.Client) (*Action, error) {
	actionID, _ := config["id"].(string)
	toPhone, _ := config["to_phone"].(string)
	fromPhone, _ := config["from_phone"].(string)
	templateName, _ := config["template_name"].(string)
	body, _ := config["body"].(string)

	mappings := stringMap(config["variable_mappings"])

	if toPhone == "" && mappings["to_phone"] == "" {
		return nil, fmt.Errorf("missing 'to_phone' in configuration: %w", ErrToPhoneRequired)
	}

	if body == "" && templateName == "" {
		return nil, ErrMessageContentRequired
	}

	return &Action{
		ID:               actionID,
		ToPhone:          toPhone,
		FromPhone:        fromPhone,
		TemplateName:     templateName,
		Body:             body,
		Parameters:       stringMap(config["parameters"]),
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
	logger = logger.With("module", "whatsapp_message_action")
	logger.InfoContext(ctx, "Executing WhatsApp message action")

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

	parameters := make(map[string]string, len(a.Parameters))
	for name, value := range a.Parameters {
		parameters[name] = expression.ResolveString(value, env)
	}

	msg := &whatsappprovider.Message{
		To:           toPhone,
		From:         expression.AsString(fields["from_phone"]),
		TemplateName: a.TemplateName,
		Body:         expression.AsString(fields["body"]),
		Parameters:   parameters,
	}

	result, err := a.client.SendMessage(ctx, executionCtx.OrganizationID, msg)
	if err != nil {
		return nil, fmt.Errorf("whatsapp delivery failed: %w", err)
	}

	logger.InfoContext(ctx, "WhatsApp message processed",
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

	if a.Body == "" && a.TemplateName == "" {
		return ErrMessageContentRequired
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
