package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/channels/gochannel"
	"github.com/journeyd/journeyd/pkg/eventbus"
	"github.com/journeyd/journeyd/pkg/events"
	"github.com/journeyd/journeyd/pkg/models"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.EventReceived, 1)

	err := bus.Handle(events.EventReceivedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.EventReceived)

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	err = bus.Publish(ctx, "org-1", &events.EventReceived{
		BaseEvent: events.NewBaseEvent(events.EventReceivedEvent, ""),
		Event:     &models.Event{ID: "evt-1", Category: "purchase", OrganizationID: "org-1"},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "evt-1", event.Event.ID)
		assert.Equal(t, "purchase", event.Event.Category)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypeIsDropped(t *testing.T) {
	bus := newTestBus(t)

	completed := make(chan *events.ExecutionCompleted, 1)

	err := bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, event any) error {
		completed <- event.(*events.ExecutionCompleted)

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for started events; they are acked and dropped.
	require.NoError(t, bus.Publish(ctx, "wf-1", &events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, "wf-1"),
		ExecutionID: "exec-1",
	}))

	require.NoError(t, bus.Publish(ctx, "wf-1", &events.ExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent, "wf-1"),
		ExecutionID: "exec-1",
		DurationMs:  12,
	}))

	select {
	case event := <-completed:
		assert.Equal(t, "exec-1", event.ExecutionID)
		assert.EqualValues(t, 12, event.DurationMs)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion event")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
