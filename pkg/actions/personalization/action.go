// Package personalization provides the personalization rule workflow action.
package personalization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/protocol"
	"github.com/journeyd/journeyd/pkg/providers/rules"
)

var (
	// ErrNameRequired is returned when the rule has no name.
	ErrNameRequired = errors.New("personalization rule name is required")
	// ErrTriggerUnknown is returned for a trigger outside the supported set.
	ErrTriggerUnknown = errors.New("unknown personalization trigger")
)

// triggerConditions maps each supported trigger name to the rule conditions
// it implies.
var triggerConditions = map[string][]rules.RuleCondition{
	"first_visit": {
		{Field: "session.visit_count", Operator: "equals", Value: 1},
	},
	"returning_visitor": {
		{Field: "session.visit_count", Operator: "greater_than", Value: 1},
	},
	"cart_abandoned": {
		{Field: "cart.item_count", Operator: "greater_than", Value: 0},
		{Field: "session.idle_minutes", Operator: "greater_than", Value: 30},
	},
	"purchase_completed": {
		{Field: "order.status", Operator: "equals", Value: "completed"},
	},
	"high_value_customer": {
		{Field: "customer.lifetime_value", Operator: "greater_than", Value: 1000},
	},
}

// Action creates a personalization rule through the external rules API.
type Action struct {
	ID               string
	Name             string
	Trigger          string
	Placement        string
	Priority         int
	Content          map[string]any
	VariableMappings map[string]string

	client rules.Client
}

// NewAction creates a personalization action from configuration.
func NewAction(config map[string]any, client rules.Client) (*Action, error) {
	actionID, _ := config["id"].(string)

	name, _ := config["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("missing 'name' in configuration: %w", ErrNameRequired)
	}

	trigger, _ := config["trigger"].(string)
	if _, known := triggerConditions[trigger]; !known {
		return nil, fmt.Errorf("trigger %q: %w", trigger, ErrTriggerUnknown)
	}

	placement, _ := config["placement"].(string)
	content, _ := config["content"].(map[string]any)

	priority := 0
	if raw, ok := config["priority"].(float64); ok {
		priority = int(raw)
	}

	return &Action{
		ID:               actionID,
		Name:             name,
		Trigger:          trigger,
		Placement:        placement,
		Priority:         priority,
		Content:          content,
		VariableMappings: stringMap(config["variable_mappings"]),
		client:           client,
	}, nil
}

// Execute synthesizes the rule payload and submits it.
func (a *Action) Execute(
	ctx context.Context,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) (map[string]any, error) {
	logger = logger.With("module", "personalization_action")
	logger.InfoContext(ctx, "Executing personalization action", "trigger", a.Trigger)

	env := executionCtx.Env()
	fields := expression.ResolveMappings(a.VariableMappings, env, map[string]any{
		"name":      a.Name,
		"placement": a.Placement,
	})

	content := make(map[string]any, len(a.Content))
	for key, value := range a.Content {
		content[key] = value

		if str, ok := value.(string); ok {
			if resolved := expression.Resolve(str, env); resolved != nil {
				content[key] = resolved
			}
		}
	}

	rule := &rules.Rule{
		Name:       expression.AsString(fields["name"]),
		Trigger:    a.Trigger,
		Conditions: triggerConditions[a.Trigger],
		Content:    content,
		Placement:  expression.AsString(fields["placement"]),
		Priority:   a.Priority,
	}

	ruleID, err := a.client.CreateRule(ctx, executionCtx.OrganizationID, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to create personalization rule: %w", err)
	}

	logger.InfoContext(ctx, "Personalization rule created", "rule_id", ruleID)

	return map[string]any{
		"rule_id":   ruleID,
		"name":      rule.Name,
		"trigger":   rule.Trigger,
		"placement": rule.Placement,
		protocol.ContextUpdatesKey: map[string]any{
			"personalizationRuleId": ruleID,
		},
	}, nil
}

// Validate checks the action configuration.
func (a *Action) Validate(_ context.Context) error {
	if a.Name == "" {
		return ErrNameRequired
	}

	if _, known := triggerConditions[a.Trigger]; !known {
		return fmt.Errorf("trigger %q: %w", a.Trigger, ErrTriggerUnknown)
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
