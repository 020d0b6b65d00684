// Package protocol defines the interfaces and contracts for pluggable
// actions and event sources.
package protocol

import (
	"context"
	"log/slog"

	"github.com/journeyd/journeyd/pkg/models"
)

// ContextUpdatesKey is the result-map key whose value (a map) the runner
// merges into the execution context's top-level variables, making it
// visible to later actions by name.
const ContextUpdatesKey = "context_updates"

// Action executes one workflow step. Implementations must not mutate the
// execution context; named outputs are returned in the result map and
// merged in by the runner.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates action instances and provides metadata about the
// action type.
type ActionFactory interface {
	// Create builds a new action instance for the given configuration.
	Create(ctx context.Context, config map[string]any) (Action, error)

	// ID returns the unique identifier for this action type.
	ID() string

	// Name returns the human-readable name for this action type.
	Name() string

	// Description returns a description of what this action does.
	Description() string

	// Schema returns the JSON schema for configuring this action.
	Schema() map[string]any
}
