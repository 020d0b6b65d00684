// Package events defines the lifecycle notifications published on the event
// bus as executions progress.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/journeyd/journeyd/pkg/models"
)

// EventType identifies a lifecycle event on the bus.
type EventType string

// Topic is the bus topic all lifecycle events are published on.
const Topic = "journeyd.events"

// Message metadata keys.
const (
	EventMetadataKey     = "key"
	EventTypeMetadataKey = "event_type"
)

const (
	// EventReceivedEvent is published when a tracked event is ingested.
	EventReceivedEvent EventType = "event.received"
	// WorkflowTriggeredEvent is published when a workflow's trigger matched
	// an event and a run is about to start.
	WorkflowTriggeredEvent EventType = "workflow.triggered"
	// ExecutionStartedEvent is published when an execution row is created.
	ExecutionStartedEvent EventType = "workflow.execution.started"
	// ExecutionCompletedEvent is published on successful finalization.
	ExecutionCompletedEvent EventType = "workflow.execution.completed"
	// ExecutionFailedEvent is published when a run finalizes as failed.
	ExecutionFailedEvent EventType = "workflow.execution.failed"
)

// BaseEvent carries the fields shared by every lifecycle event.
type BaseEvent struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	OrganizationID string         `json:"organization_id,omitempty"`
	WorkflowID     string         `json:"workflow_id,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent creates the shared envelope for a lifecycle event.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}

// EventReceived wraps an ingested tracked event for bus delivery.
type EventReceived struct {
	BaseEvent

	Event *models.Event `json:"event"`
}

// GetType implements eventbus.Event.
func (e EventReceived) GetType() EventType {
	return EventReceivedEvent
}

// WorkflowTriggered announces a trigger match.
type WorkflowTriggered struct {
	BaseEvent

	EventID string `json:"event_id"`
}

// GetType implements eventbus.Event.
func (e WorkflowTriggered) GetType() EventType {
	return WorkflowTriggeredEvent
}

// ExecutionStarted announces a run entering the running state.
type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
}

// GetType implements eventbus.Event.
func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

// ExecutionCompleted announces a run finalized as completed.
type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string         `json:"execution_id"`
	Results     map[string]any `json:"results,omitempty"`
	DurationMs  int64          `json:"duration_ms"`
}

// GetType implements eventbus.Event.
func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

// ExecutionFailed announces a run finalized as failed.
type ExecutionFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	Error       string `json:"error"`
	DurationMs  int64  `json:"duration_ms"`
}

// GetType implements eventbus.Event.
func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
