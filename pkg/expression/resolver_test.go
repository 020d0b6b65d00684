package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testEnv() map[string]any {
	return map[string]any{
		"event": map[string]any{
			"name":  "purchase",
			"value": 100.0,
			"user": map[string]any{
				"age":   30,
				"phone": "+15551234567",
			},
		},
		"welcome_code": "SAVE10",
	}
}

func TestLookup(t *testing.T) {
	env := testEnv()

	testCases := []struct {
		name string
		path string
		want any
	}{
		{name: "top level", path: "welcome_code", want: "SAVE10"},
		{name: "nested", path: "event.user.age", want: 30},
		{name: "missing leaf", path: "event.user.email", want: nil},
		{name: "missing intermediate", path: "event.cart.total", want: nil},
		{name: "path through non-map", path: "event.name.first", want: nil},
		{name: "empty path", path: "", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Lookup(tc.path, env))
		})
	}
}

func TestResolve_DottedPath(t *testing.T) {
	assert.Equal(t, "purchase", Resolve("event.name", testEnv()))
	assert.Nil(t, Resolve("event.missing", testEnv()))
}

func TestResolve_JSONPath(t *testing.T) {
	assert.Equal(t, "+15551234567", Resolve("$.event.user.phone", testEnv()))
	assert.Nil(t, Resolve("$.event.nope", testEnv()))
}

func TestResolve_SingleTokenKeepsType(t *testing.T) {
	value := Resolve("{event.value}", testEnv())
	assert.Equal(t, 100.0, value)
}

func TestResolve_Interpolation(t *testing.T) {
	result := Resolve("Hi, use {welcome_code} on your next {event.name}", testEnv())
	assert.Equal(t, "Hi, use SAVE10 on your next purchase", result)
}

func TestResolve_JSONPathToken(t *testing.T) {
	result := Resolve("phone: {$.event.user.phone}", testEnv())
	assert.Equal(t, "phone: +15551234567", result)
}

func TestResolveString_NilToEmpty(t *testing.T) {
	assert.Equal(t, "", ResolveString("event.missing", testEnv()))
	assert.Equal(t, "100", ResolveString("event.value", testEnv()))
}

func TestAsString(t *testing.T) {
	assert.Equal(t, "", AsString(nil))
	assert.Equal(t, "hello", AsString("hello"))
	assert.Equal(t, "42", AsString(42))
}

func TestInterpolation_UnresolvedTokenRendersEmpty(t *testing.T) {
	assert.Equal(t, "Hi !", Resolve("Hi {event.missing}!", testEnv()))
}

func TestResolveMappings_FallsBackToStatic(t *testing.T) {
	env := testEnv()

	static := map[string]any{
		"to_phone":   "+10000000000",
		"from_phone": "+19999999999",
		"first_name": "customer",
	}

	mappings := map[string]string{
		"to_phone":   "event.user.phone",
		"first_name": "event.user.name", // does not resolve
	}

	resolved := ResolveMappings(mappings, env, static)

	assert.Equal(t, "+15551234567", resolved["to_phone"])
	assert.Equal(t, "+19999999999", resolved["from_phone"], "unmapped field keeps static value")
	assert.Equal(t, "customer", resolved["first_name"], "unresolved mapping keeps static value")
}

func TestResolveMappings_InterpolatesStaticTokens(t *testing.T) {
	resolved := ResolveMappings(
		nil,
		testEnv(),
		map[string]any{"body": "Your {event.name} is confirmed"},
	)

	assert.Equal(t, "Your purchase is confirmed", resolved["body"])
}

func TestResolveMappings_IgnoresUnknownFields(t *testing.T) {
	resolved := ResolveMappings(
		map[string]string{"extra": "event.name"},
		testEnv(),
		map[string]any{"to_phone": "+10000000000"},
	)

	_, exists := resolved["extra"]
	assert.False(t, exists)
}
