package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Evaluate_Comparisons(t *testing.T) {
	engine := NewEngine()
	env := testEnv()

	testCases := []struct {
		name       string
		expression string
		want       bool
	}{
		{name: "numeric comparison", expression: "event.value > 50", want: true},
		{name: "numeric comparison false", expression: "event.value > 500", want: false},
		{name: "string equality", expression: `event.name == "purchase"`, want: true},
		{name: "boolean logic", expression: `event.value >= 100 && event.user.age < 65`, want: true},
		{name: "contains builtin", expression: `"purchase" contains "chase"`, want: true},
		{name: "undefined variable is nil", expression: "missing == nil", want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := engine.EvaluateBool(tc.expression, env)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestEngine_EvaluateBool_NonBoolean(t *testing.T) {
	engine := NewEngine()

	_, err := engine.EvaluateBool("event.value", testEnv())
	assert.Error(t, err)
}

func TestEngine_Evaluate_EmptyExpression(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Evaluate("", testEnv())
	assert.Error(t, err)
}

func TestEngine_Evaluate_CompileError(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Evaluate("event.value >", testEnv())
	assert.Error(t, err)
}

func TestEngine_CachesPrograms(t *testing.T) {
	engine := NewEngine()
	env := testEnv()

	_, err := engine.Evaluate("event.value > 50", env)
	require.NoError(t, err)

	engine.mu.RLock()
	cached := len(engine.cache)
	engine.mu.RUnlock()

	assert.Equal(t, 1, cached)

	// Second evaluation reuses the compiled program.
	result, err := engine.EvaluateBool("event.value > 50", env)
	require.NoError(t, err)
	assert.True(t, result)
}
