// Package eventbus provides the publish/subscribe transport for lifecycle
// events.
package eventbus

import (
	"context"

	"github.com/journeyd/journeyd/pkg/events"
)

// Event is any lifecycle event that knows its type.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes lifecycle events keyed for partitioning.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventHandler processes one decoded lifecycle event.
type EventHandler func(ctx context.Context, event any) error

// EventSubscriber routes lifecycle events to registered handlers.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventBus combines publishing and subscribing over one transport.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
