package condition_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/actions/condition"
	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testExecutionContext() models.ExecutionContext {
	value := 150.0
	workflow := &models.Workflow{ID: "wf-1", OrganizationID: "org-1"}
	event := &models.Event{
		Category: "engagement",
		Name:     "purchase",
		Value:    &value,
		Data: map[string]any{
			"user": map[string]any{"tier": "gold", "age": 30.0},
		},
	}

	return *models.NewExecutionContext("exec-1", workflow, event)
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	engine := expression.NewEngine()

	_, err := condition.NewAction(map[string]any{}, engine)
	assert.ErrorIs(t, err, condition.ErrConditionConfigRequired)

	_, err = condition.NewAction(map[string]any{
		"left_operand":   "event.value",
		"condition_type": "almost_equals",
	}, engine)
	assert.ErrorIs(t, err, condition.ErrConditionTypeInvalid)
}

func TestAction_Execute_OperandComparisons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   map[string]any
		expected bool
	}{
		{
			name: "strict equality across types is false",
			config: map[string]any{
				"left_operand":   "event.user.tier",
				"right_operand":  5,
				"condition_type": "equals",
			},
			expected: false,
		},
		{
			name: "equals same string",
			config: map[string]any{
				"left_operand":   "event.user.tier",
				"right_operand":  "gold",
				"condition_type": "equals",
			},
			expected: true,
		},
		{
			name: "greater_than coerces numeric strings",
			config: map[string]any{
				"left_operand":   "event.value",
				"right_operand":  "100",
				"condition_type": "greater_than",
			},
			expected: true,
		},
		{
			name: "less_than false when left larger",
			config: map[string]any{
				"left_operand":   "event.value",
				"right_operand":  100,
				"condition_type": "less_than",
			},
			expected: false,
		},
		{
			name: "contains string coercion",
			config: map[string]any{
				"left_operand":   "event.name",
				"right_operand":  "chase",
				"condition_type": "contains",
			},
			expected: true,
		},
		{
			name: "not_contains",
			config: map[string]any{
				"left_operand":   "event.name",
				"right_operand":  "refund",
				"condition_type": "not_contains",
			},
			expected: true,
		},
		{
			name: "not_equals across types",
			config: map[string]any{
				"left_operand":   "event.user.age",
				"right_operand":  "30",
				"condition_type": "not_equals",
			},
			expected: true,
		},
	}

	engine := expression.NewEngine()

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			action, err := condition.NewAction(testCase.config, engine)
			require.NoError(t, err)

			result, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, result["result"])
		})
	}
}

func TestAction_Execute_NumericComparisonRejectsNonNumeric(t *testing.T) {
	t.Parallel()

	action, err := condition.NewAction(map[string]any{
		"left_operand":   "event.user.tier",
		"right_operand":  10,
		"condition_type": "greater_than",
	}, expression.NewEngine())
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, condition.ErrOperandNotNumeric)
}

func TestAction_Execute_SandboxedExpression(t *testing.T) {
	t.Parallel()

	action, err := condition.NewAction(map[string]any{
		"expression":      `event.value > 100 && event.user.tier == "gold"`,
		"output_variable": "isVip",
	}, expression.NewEngine())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, true, result["result"])

	updates := result[protocol.ContextUpdatesKey].(map[string]any)
	assert.Equal(t, true, updates["isVip"])
}

func TestAction_Execute_ExpressionMustBeBoolean(t *testing.T) {
	t.Parallel()

	action, err := condition.NewAction(map[string]any{
		"expression": "event.value + 1",
	}, expression.NewEngine())
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.Error(t, err)
}

func TestAction_Execute_ReturnsResolvedOperands(t *testing.T) {
	t.Parallel()

	action, err := condition.NewAction(map[string]any{
		"left_operand":  "event.value",
		"right_operand": "event.user.age",
	}, expression.NewEngine())
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.InEpsilon(t, 150.0, result["left_value"], 0.001)
	assert.InEpsilon(t, 30.0, result["right_value"], 0.001)
	assert.Equal(t, false, result["result"])
}
