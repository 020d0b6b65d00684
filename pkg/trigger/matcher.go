// Package trigger implements matching of inbound events against workflow
// trigger configurations.
package trigger

import (
	"log/slog"
	"strings"

	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
)

// Matcher decides whether events satisfy workflow triggers.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a trigger matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// MatchWorkflows returns the active workflows whose trigger matches the
// event. Inactive workflows are skipped without evaluation.
func (m *Matcher) MatchWorkflows(event *models.Event, workflows []*models.Workflow) []*models.Workflow {
	var matches []*models.Workflow

	for _, workflow := range workflows {
		if !workflow.IsActive() {
			continue
		}

		if Matches(&workflow.Trigger, event) {
			matches = append(matches, workflow)

			m.logger.Debug("Workflow trigger matched event",
				"workflow_id", workflow.ID,
				"event_id", event.ID,
				"event_category", event.Category)
		}
	}

	m.logger.Info("Completed trigger matching",
		"event_id", event.ID,
		"event_category", event.Category,
		"workflows_checked", len(workflows),
		"matches_found", len(matches))

	return matches
}

// Matches reports whether the event satisfies the trigger: the event
// category must equal the trigger's event type, every set filter must match
// exactly, and every condition must evaluate true. Pure function of its two
// inputs.
func Matches(trigger *models.TriggerConfig, event *models.Event) bool {
	if trigger.EventType != event.Category {
		return false
	}

	if !filtersMatch(&trigger.Filters, event) {
		return false
	}

	if len(trigger.Conditions) == 0 {
		return true
	}

	eventMap := event.AsMap()

	for i := range trigger.Conditions {
		if !conditionMatches(&trigger.Conditions[i], eventMap) {
			return false
		}
	}

	return true
}

func filtersMatch(filters *models.TriggerFilters, event *models.Event) bool {
	if filters.EventName != nil && *filters.EventName != event.Name {
		return false
	}

	if filters.ItemName != nil && *filters.ItemName != event.ItemName {
		return false
	}

	if filters.ItemCategory != nil && *filters.ItemCategory != event.ItemCategory {
		return false
	}

	if filters.ItemID != nil && *filters.ItemID != event.ItemID {
		return false
	}

	// A nil value filter is no constraint; zero is significant and checked.
	if filters.Value != nil {
		if event.Value == nil || *filters.Value != *event.Value {
			return false
		}
	}

	if filters.Category != nil && *filters.Category != event.Category {
		return false
	}

	return true
}

func conditionMatches(condition *models.TriggerCondition, eventMap map[string]any) bool {
	fieldValue := expression.Lookup(condition.Field, eventMap)

	switch condition.Operator {
	case models.ConditionOperatorEquals:
		return strictEquals(fieldValue, condition.Value)
	case models.ConditionOperatorContains:
		str, ok := fieldValue.(string)
		if !ok {
			return false
		}

		expected, ok := condition.Value.(string)
		if !ok {
			return false
		}

		return strings.Contains(str, expected)
	case models.ConditionOperatorGreaterThan:
		fieldNum, ok := asNumber(fieldValue)
		if !ok {
			// Non-numeric field values pass ordering checks unchallenged.
			// Inherited behavior, kept intentionally; see DESIGN.md.
			return true
		}

		expected, ok := asNumber(condition.Value)
		if !ok {
			return true
		}

		return fieldNum > expected
	case models.ConditionOperatorLessThan:
		fieldNum, ok := asNumber(fieldValue)
		if !ok {
			return true
		}

		expected, ok := asNumber(condition.Value)
		if !ok {
			return true
		}

		return fieldNum < expected
	default:
		return false
	}
}

// strictEquals mirrors strict equality: values of different dynamic types
// never compare equal, numeric widths excepted only within each family.
func strictEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}

	aNum, aIsNum := asNumber(a)
	bNum, bIsNum := asNumber(b)

	if aIsNum != bIsNum {
		return false
	}

	if aIsNum {
		return aNum == bNum
	}

	return a == b
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
