// Package registry holds the action and source factories available to the
// engine and validates action configuration against each factory's schema.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/journeyd/journeyd/pkg/protocol"
)

var (
	// ErrActionNotRegistered is returned for an unknown action type.
	ErrActionNotRegistered = errors.New("action type not registered")
	// ErrSourceNotRegistered is returned for an unknown source type.
	ErrSourceNotRegistered = errors.New("source type not registered")
	// ErrConfigInvalid is returned when an action configuration fails its
	// factory's schema.
	ErrConfigInvalid = errors.New("action configuration invalid")
)

// Registry maps action and source type IDs to their factories.
type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
	sourceFactories map[string]protocol.SourceFactory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger.With("module", "registry"),
		actionFactories: make(map[string]protocol.ActionFactory),
		sourceFactories: make(map[string]protocol.SourceFactory),
	}
}

// RegisterAction registers an action factory under its ID.
func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
	r.logger.Debug("Registered action", "action_type", factory.ID())
}

// RegisterSource registers a source factory under its ID.
func (r *Registry) RegisterSource(factory protocol.SourceFactory) {
	r.sourceFactories[factory.ID()] = factory
	r.logger.Debug("Registered source", "source_type", factory.ID())
}

// CreateAction validates config against the factory's schema and builds the
// action.
func (r *Registry) CreateAction(ctx context.Context, actionType string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type %q: %w", actionType, ErrActionNotRegistered)
	}

	err := validateConfig(factory.Schema(), config)
	if err != nil {
		return nil, fmt.Errorf("action type %q: %w", actionType, err)
	}

	return factory.Create(ctx, config)
}

// CreateSource builds a source from its registered factory.
func (r *Registry) CreateSource(ctx context.Context, sourceType string, config map[string]any) (protocol.Source, error) {
	factory, ok := r.sourceFactories[sourceType]
	if !ok {
		return nil, fmt.Errorf("source type %q: %w", sourceType, ErrSourceNotRegistered)
	}

	return factory.Create(ctx, config, r.logger)
}

// AvailableActions returns the registered action factories.
func (r *Registry) AvailableActions() []protocol.ActionFactory {
	factories := make([]protocol.ActionFactory, 0, len(r.actionFactories))
	for _, factory := range r.actionFactories {
		factories = append(factories, factory)
	}

	return factories
}

// IsActionRegistered reports whether the action type is known.
func (r *Registry) IsActionRegistered(actionType string) bool {
	_, exists := r.actionFactories[actionType]

	return exists
}

func validateConfig(schema map[string]any, config map[string]any) error {
	if schema == nil {
		return nil
	}

	// The "id" key is injected by the runner, not authored in workflow
	// configuration; exclude it from schema validation.
	data := make(map[string]any, len(config))

	for key, value := range config {
		if key == "id" {
			continue
		}

		data[key] = value
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var details []string
		for _, violation := range result.Errors() {
			details = append(details, violation.String())
		}

		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(details, "; "))
	}

	return nil
}
