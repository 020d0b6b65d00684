// Package expression resolves dotted-path references, templated tokens and
// sandboxed boolean expressions against a workflow execution scope.
package expression

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile(`\{(.*?)\}`)

// Lookup walks a dotted path through nested map[string]any values. A missing
// key at any depth resolves to nil; it never panics.
func Lookup(path string, data map[string]any) any {
	if path == "" || data == nil {
		return nil
	}

	var current any = data

	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		current, ok = m[segment]
		if !ok {
			return nil
		}
	}

	return current
}

// Resolve evaluates a single expression string against env. Three forms are
// supported:
//   - "{...}" tokens: interpolated into the surrounding string; a string
//     that is exactly one token yields the referenced value unconverted
//   - "$...": a JSONPath lookup
//   - anything else: a dotted-path lookup
//
// Resolution failures yield nil rather than an error; callers decide whether
// nil is fatal.
func Resolve(expr string, env map[string]any) any {
	if expr == "" {
		return nil
	}

	if tokenPattern.MatchString(expr) {
		return interpolate(expr, env)
	}

	if strings.HasPrefix(expr, "$") {
		value, err := jsonpath.JsonPathLookup(env, expr)
		if err != nil {
			return nil
		}

		return value
	}

	return Lookup(expr, env)
}

// ResolveString is Resolve with the result rendered as a string; nil
// resolves to "".
func ResolveString(expr string, env map[string]any) string {
	return AsString(Resolve(expr, env))
}

// AsString renders a resolved value as a string. A nil value renders as ""
// rather than fmt's "<nil>", so empty-string guards see unresolved fields.
func AsString(value any) string {
	if value == nil {
		return ""
	}

	return fmt.Sprintf("%v", value)
}

// ResolveMappings resolves a variable-mappings map against env, falling back
// to the static field value when a field has no mapping or its expression
// resolves to nil. Static string values containing "{...}" tokens are
// interpolated. Only fields present in static appear in the result.
func ResolveMappings(mappings map[string]string, env map[string]any, static map[string]any) map[string]any {
	resolved := make(map[string]any, len(static))

	for field, fallback := range static {
		if str, ok := fallback.(string); ok && tokenPattern.MatchString(str) {
			fallback = interpolate(str, env)
		}

		resolved[field] = fallback

		expr, mapped := mappings[field]
		if !mapped || expr == "" {
			continue
		}

		if value := Resolve(expr, env); value != nil {
			resolved[field] = value
		}
	}

	return resolved
}

func interpolate(input string, env map[string]any) any {
	tokens := tokenPattern.FindAllString(input, -1)

	// A string that is exactly one token resolves to the raw value so
	// non-string types survive mapping resolution.
	if len(tokens) == 1 && tokens[0] == input {
		return resolveToken(tokens[0], env)
	}

	result := input

	for _, token := range tokens {
		value := resolveToken(token, env)
		result = strings.ReplaceAll(result, token, AsString(value))
	}

	return result
}

func resolveToken(token string, env map[string]any) any {
	path := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")

	if strings.HasPrefix(path, "$") {
		value, err := jsonpath.JsonPathLookup(env, path)
		if err != nil {
			return nil
		}

		return value
	}

	return Lookup(path, env)
}
