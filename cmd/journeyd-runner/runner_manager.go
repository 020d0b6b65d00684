// Package main provides the JourneyD runner process. It consumes ingested
// events from the bus, starts the configured event sources, and executes
// every matching workflow.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/journeyd/journeyd/pkg/config"
	"github.com/journeyd/journeyd/pkg/eventbus"
	"github.com/journeyd/journeyd/pkg/events"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/protocol"
	"github.com/journeyd/journeyd/pkg/registry"
	"github.com/journeyd/journeyd/pkg/workflow"
)

type RunnerManager struct {
	id            string
	logger        *slog.Logger
	persistence   persistence.Persistence
	registry      *registry.Registry
	eventBus      eventbus.EventBus
	runner        *workflow.Runner
	sourceConfigs []config.SourceConfig
	sources       []protocol.Source
}

func NewRunnerManager(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	registry *registry.Registry,
	sourceConfigs []config.SourceConfig,
) *RunnerManager {
	managerLogger := logger.With("module", "journeyd-runner", "runner_id", id)

	return &RunnerManager{
		id:            id,
		logger:        managerLogger,
		persistence:   persistence,
		registry:      registry,
		eventBus:      eventBus,
		runner:        workflow.NewRunner(persistence, registry, managerLogger, workflow.WithEventPublisher(eventBus)),
		sourceConfigs: sourceConfigs,
	}
}

func (m *RunnerManager) Start(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting runner manager")

	err := m.eventBus.Handle(events.EventReceivedEvent, m.handleEventReceived)
	if err != nil {
		return err
	}

	err = m.eventBus.Subscribe(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if err := m.startSources(ctx); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Runner started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		m.logger.InfoContext(ctx, "Shutting down runner...")
	case <-ctx.Done():
	}

	m.stopSources(ctx)

	return nil
}

func (m *RunnerManager) startSources(ctx context.Context) error {
	for _, sourceConfig := range m.sourceConfigs {
		source, err := m.registry.CreateSource(ctx, sourceConfig.Type, sourceConfig.Configuration)
		if err != nil {
			m.logger.ErrorContext(ctx, "Failed to create source",
				"source_type", sourceConfig.Type, "source_name", sourceConfig.Name, "error", err)

			return err
		}

		if err := source.Start(ctx, m.publishSourceEvent); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start source",
				"source_type", sourceConfig.Type, "source_name", sourceConfig.Name, "error", err)

			return err
		}

		m.logger.InfoContext(ctx, "Started event source",
			"source_type", sourceConfig.Type, "source_name", sourceConfig.Name)

		m.sources = append(m.sources, source)
	}

	return nil
}

func (m *RunnerManager) stopSources(ctx context.Context) {
	for _, source := range m.sources {
		if err := source.Stop(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to stop source", "error", err)
		}
	}
}

// publishSourceEvent forwards events produced by hosted sources onto the
// bus, so they flow through the same path as API-ingested events.
func (m *RunnerManager) publishSourceEvent(ctx context.Context, event *models.Event) error {
	return m.eventBus.Publish(ctx, event.OrganizationID, &events.EventReceived{
		BaseEvent: events.NewBaseEvent(events.EventReceivedEvent, ""),
		Event:     event,
	})
}

func (m *RunnerManager) handleEventReceived(ctx context.Context, event any) error {
	receivedEvent, ok := event.(*events.EventReceived)
	if !ok {
		m.logger.ErrorContext(ctx, "Invalid event type for EventReceived")

		return nil
	}

	logger := m.logger.With(
		"event_id", receivedEvent.Event.ID,
		"organization_id", receivedEvent.Event.OrganizationID,
		"category", receivedEvent.Event.Category,
	)
	logger.InfoContext(ctx, "Processing ingested event")

	executions, err := m.runner.ProcessEvent(ctx, receivedEvent.Event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to process event", "error", err)

		return err
	}

	logger.InfoContext(ctx, "Event processed", "executions", len(executions))

	return nil
}
