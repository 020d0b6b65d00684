package expression

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine evaluates user-authored condition snippets inside a sandboxed
// expression language: comparisons, boolean logic, literals and path
// lookups over the execution scope, with no access to arbitrary code.
// Compiled programs are cached and reused across goroutines.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewEngine creates an expression engine with an empty program cache.
func NewEngine() *Engine {
	return &Engine{cache: make(map[string]*vm.Program)}
}

// Evaluate compiles (or reuses) the expression and runs it with env keys
// exposed as top-level variables.
func (e *Engine) Evaluate(expression string, env map[string]any) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("empty expression")
	}

	program, err := e.getOrCompile(expression, env)
	if err != nil {
		return nil, err
	}

	if env == nil {
		env = map[string]any{}
	}

	out, err := vm.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression %q: %w", expression, err)
	}

	return out, nil
}

// EvaluateBool evaluates the expression and requires a boolean result.
func (e *Engine) EvaluateBool(expression string, env map[string]any) (bool, error) {
	out, err := e.Evaluate(expression, env)
	if err != nil {
		return false, err
	}

	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, expected bool", expression, out)
	}

	return result, nil
}

func (e *Engine) getOrCompile(expression string, env map[string]any) (*vm.Program, error) {
	e.mu.RLock()
	if program, ok := e.cache[expression]; ok {
		e.mu.RUnlock()

		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.cache[expression]; ok {
		return program, nil
	}

	if env == nil {
		env = map[string]any{}
	}

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", expression, err)
	}

	e.cache[expression] = program

	return program, nil
}
