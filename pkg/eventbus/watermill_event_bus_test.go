package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/chainreact/chainreact/pkg/channels/gochannel"
	"github.com/chainreact/chainreact/pkg/eventbus"
	"github.com/chainreact/chainreact/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	publisher, subscriber, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(publisher, subscriber)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_RoundTrip(t *testing.T) {
	bus := setupBus(t)

	received := make(chan *events.WorkflowTriggered, 1)

	bus.Handle(events.WorkflowTriggeredEvent, func(_ context.Context, event any) error {
		triggered, ok := event.(*events.WorkflowTriggered)
		require.True(t, ok)

		received <- triggered

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	err := bus.Publish(ctx, "ex-1", events.WorkflowTriggered{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.WorkflowTriggeredEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: "wf-1",
			Metadata:   map[string]any{"execution_id": "ex-1"},
		},
		UserID:        "user-1",
		TriggerNodeID: "start",
	})
	require.NoError(t, err)

	select {
	case triggered := <-received:
		assert.Equal(t, "wf-1", triggered.WorkflowID)
		assert.Equal(t, "ex-1", triggered.Metadata["execution_id"])
		assert.Equal(t, "start", triggered.TriggerNodeID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypesAreDropped(t *testing.T) {
	bus := setupBus(t)

	received := make(chan struct{}, 1)

	bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, _ any) error {
		received <- struct{}{}

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler for node events; the message is acked and dropped.
	err := bus.Publish(ctx, "ex-1", events.NodeCompleted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.NodeCompletedEvent},
	})
	require.NoError(t, err)

	err = bus.Publish(ctx, "ex-1", events.ExecutionCompleted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.ExecutionCompletedEvent},
	})
	require.NoError(t, err)

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
