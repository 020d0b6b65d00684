package personalization_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/actions/personalization"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/protocol"
	"github.com/journeyd/journeyd/pkg/providers/rules"
)

type fakeClient struct {
	lastOrgID string
	lastRule  *rules.Rule
	ruleID    string
	err       error
}

func (f *fakeClient) CreateRule(_ context.Context, organizationID string, rule *rules.Rule) (string, error) {
	f.lastOrgID = organizationID
	f.lastRule = rule

	if f.err != nil {
		return "", f.err
	}

	return f.ruleID, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testExecutionContext() models.ExecutionContext {
	workflow := &models.Workflow{ID: "wf-1", OrganizationID: "org-1"}
	event := &models.Event{
		Category: "engagement",
		Name:     "purchase",
		Data: map[string]any{
			"user": map[string]any{"name": "Ana"},
		},
	}

	return *models.NewExecutionContext("exec-1", workflow, event)
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	_, err := personalization.NewAction(map[string]any{"trigger": "first_visit"}, &fakeClient{})
	assert.ErrorIs(t, err, personalization.ErrNameRequired)

	_, err = personalization.NewAction(map[string]any{
		"name":    "Welcome banner",
		"trigger": "rage_click",
	}, &fakeClient{})
	assert.ErrorIs(t, err, personalization.ErrTriggerUnknown)
}

func TestAction_Execute_SynthesizesRule(t *testing.T) {
	t.Parallel()

	client := &fakeClient{ruleID: "rule-77"}

	action, err := personalization.NewAction(map[string]any{
		"name":      "Cart nudge",
		"trigger":   "cart_abandoned",
		"placement": "homepage_banner",
		"priority":  5.0,
		"content": map[string]any{
			"headline": "Still thinking it over, {event.user.name}?",
			"cta":      "Checkout now",
		},
	}, client)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)

	assert.Equal(t, "org-1", client.lastOrgID)
	assert.Equal(t, "Cart nudge", client.lastRule.Name)
	assert.Equal(t, 5, client.lastRule.Priority)
	assert.Len(t, client.lastRule.Conditions, 2, "cart_abandoned implies two conditions")
	assert.Equal(t, "Still thinking it over, Ana?", client.lastRule.Content["headline"])
	assert.Equal(t, "Checkout now", client.lastRule.Content["cta"])

	assert.Equal(t, "rule-77", result["rule_id"])

	updates := result[protocol.ContextUpdatesKey].(map[string]any)
	assert.Equal(t, "rule-77", updates["personalizationRuleId"])
}

func TestAction_Execute_APIFailureSurfaces(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: rules.ErrRuleRejected}

	action, err := personalization.NewAction(map[string]any{
		"name":    "Welcome banner",
		"trigger": "first_visit",
	}, client)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, rules.ErrRuleRejected)
}
