package trigger

import (
	"log/slog"
	"os"
	"testing"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestMatches_EventTypeMismatch(t *testing.T) {
	trigger := &models.TriggerConfig{
		EventType: "engagement",
		Filters:   models.TriggerFilters{EventName: strPtr("purchase")},
	}

	event := &models.Event{Category: "system", Name: "purchase"}

	// Category mismatch fails regardless of filters and conditions.
	assert.False(t, Matches(trigger, event))
}

func TestMatches_Filters(t *testing.T) {
	testCases := []struct {
		name    string
		filters models.TriggerFilters
		event   models.Event
		want    bool
	}{
		{
			name:    "event name and value match",
			filters: models.TriggerFilters{EventName: strPtr("purchase"), Value: floatPtr(100)},
			event:   models.Event{Category: "engagement", Name: "purchase", Value: floatPtr(100)},
			want:    true,
		},
		{
			name:    "value mismatch",
			filters: models.TriggerFilters{EventName: strPtr("purchase"), Value: floatPtr(100)},
			event:   models.Event{Category: "engagement", Name: "purchase", Value: floatPtr(50)},
			want:    false,
		},
		{
			name:    "nil value filter is unconstrained",
			filters: models.TriggerFilters{EventName: strPtr("purchase")},
			event:   models.Event{Category: "engagement", Name: "purchase"},
			want:    true,
		},
		{
			name:    "zero value filter is significant",
			filters: models.TriggerFilters{Value: floatPtr(0)},
			event:   models.Event{Category: "engagement", Value: floatPtr(50)},
			want:    false,
		},
		{
			name:    "zero value filter matches zero",
			filters: models.TriggerFilters{Value: floatPtr(0)},
			event:   models.Event{Category: "engagement", Value: floatPtr(0)},
			want:    true,
		},
		{
			name:    "value filter with absent event value",
			filters: models.TriggerFilters{Value: floatPtr(10)},
			event:   models.Event{Category: "engagement"},
			want:    false,
		},
		{
			name:    "item fields",
			filters: models.TriggerFilters{ItemName: strPtr("shoes"), ItemCategory: strPtr("apparel"), ItemID: strPtr("sku-1")},
			event:   models.Event{Category: "engagement", ItemName: "shoes", ItemCategory: "apparel", ItemID: "sku-1"},
			want:    true,
		},
		{
			name:    "item id mismatch",
			filters: models.TriggerFilters{ItemID: strPtr("sku-1")},
			event:   models.Event{Category: "engagement", ItemID: "sku-2"},
			want:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trigger := &models.TriggerConfig{EventType: "engagement", Filters: tc.filters}
			assert.Equal(t, tc.want, Matches(trigger, &tc.event))
		})
	}
}

func TestMatches_Conditions(t *testing.T) {
	event := &models.Event{
		Category: "engagement",
		Name:     "purchase",
		Value:    floatPtr(100),
		Data: map[string]any{
			"user": map[string]any{
				"age":  30,
				"tier": "gold",
			},
		},
	}

	testCases := []struct {
		name      string
		condition models.TriggerCondition
		want      bool
	}{
		{
			name:      "equals on nested path",
			condition: models.TriggerCondition{Field: "user.tier", Operator: models.ConditionOperatorEquals, Value: "gold"},
			want:      true,
		},
		{
			name:      "equals strict across types",
			condition: models.TriggerCondition{Field: "user.tier", Operator: models.ConditionOperatorEquals, Value: 5},
			want:      false,
		},
		{
			name:      "contains",
			condition: models.TriggerCondition{Field: "user.tier", Operator: models.ConditionOperatorContains, Value: "ol"},
			want:      true,
		},
		{
			name:      "contains on non-string field",
			condition: models.TriggerCondition{Field: "user.age", Operator: models.ConditionOperatorContains, Value: "3"},
			want:      false,
		},
		{
			name:      "greater than",
			condition: models.TriggerCondition{Field: "user.age", Operator: models.ConditionOperatorGreaterThan, Value: 18},
			want:      true,
		},
		{
			name:      "less than fails",
			condition: models.TriggerCondition{Field: "user.age", Operator: models.ConditionOperatorLessThan, Value: 18},
			want:      false,
		},
		{
			name:      "greater than on non-numeric field passes",
			condition: models.TriggerCondition{Field: "user.tier", Operator: models.ConditionOperatorGreaterThan, Value: 10},
			want:      true,
		},
		{
			name:      "missing intermediate key resolves nil",
			condition: models.TriggerCondition{Field: "cart.total", Operator: models.ConditionOperatorEquals, Value: 10},
			want:      false,
		},
		{
			name:      "missing path passes ordering check",
			condition: models.TriggerCondition{Field: "cart.total", Operator: models.ConditionOperatorGreaterThan, Value: 10},
			want:      true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trigger := &models.TriggerConfig{
				EventType:  "engagement",
				Conditions: []models.TriggerCondition{tc.condition},
			}
			assert.Equal(t, tc.want, Matches(trigger, event))
		})
	}
}

func TestMatches_ConditionsOnlyAfterFilters(t *testing.T) {
	trigger := &models.TriggerConfig{
		EventType: "engagement",
		Filters:   models.TriggerFilters{EventName: strPtr("signup")},
		Conditions: []models.TriggerCondition{
			{Field: "user.age", Operator: models.ConditionOperatorGreaterThan, Value: 18},
		},
	}

	event := &models.Event{
		Category: "engagement",
		Name:     "purchase",
		Data:     map[string]any{"user": map[string]any{"age": 30}},
	}

	assert.False(t, Matches(trigger, event))
}

func TestMatcher_MatchWorkflows_SkipsInactive(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	matcher := NewMatcher(logger)

	event := &models.Event{Category: "engagement", Name: "purchase"}

	workflows := []*models.Workflow{
		{
			ID:      "wf-active",
			Status:  models.WorkflowStatusActive,
			Trigger: models.TriggerConfig{EventType: "engagement"},
		},
		{
			ID:      "wf-inactive",
			Status:  models.WorkflowStatusInactive,
			Trigger: models.TriggerConfig{EventType: "engagement"},
		},
		{
			ID:      "wf-other-category",
			Status:  models.WorkflowStatusActive,
			Trigger: models.TriggerConfig{EventType: "system"},
		},
	}

	matches := matcher.MatchWorkflows(event, workflows)

	assert.Len(t, matches, 1)
	assert.Equal(t, "wf-active", matches[0].ID)
}
