package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversToSubscriber(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)

	broker.Publish(UpdatedEvent, "connected")

	select {
	case event := <-ch:
		require.Equal(t, "connected", event.Payload)
		require.Equal(t, UpdatedEvent, event.Type)
		require.False(t, event.Timestamp.IsZero())
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for event")
	}
}

func TestBroker_FanOut(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx := context.Background()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)
	ch3 := broker.Subscribe(ctx)

	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(CreatedEvent, 42)

	for i, ch := range []<-chan Event[int]{ch1, ch2, ch3} {
		select {
		case event := <-ch:
			require.Equal(t, 42, event.Payload, "subscriber %d", i)
			require.Equal(t, CreatedEvent, event.Type, "subscriber %d", i)
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_SubscriptionReleasedOnCancel(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())

	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	time.Sleep(20 * time.Millisecond) // cleanup goroutine runs

	require.Equal(t, 0, broker.SubscriberCount())

	_, ok := <-ch
	require.False(t, ok, "channel should be closed after cancel")
}

func TestBroker_PublishNeverBlocks(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())

	// Fill the single-slot buffer
	broker.Publish(UpdatedEvent, 1)

	done := make(chan bool)
	go func() {
		broker.Publish(UpdatedEvent, 2)
		broker.Publish(UpdatedEvent, 3)
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Publish blocked on a full subscriber")
	}

	// Only the buffered event survives; the rest were dropped
	event := <-ch
	require.Equal(t, 1, event.Payload)
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[string]()

	ctx := context.Background()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)

	require.Equal(t, 2, broker.SubscriberCount())

	broker.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	require.False(t, ok1, "ch1 should be closed")
	require.False(t, ok2, "ch2 should be closed")
	require.Equal(t, 0, broker.SubscriberCount())

	// Subscribing after close yields an already-closed channel
	ch3 := broker.Subscribe(ctx)
	_, ok3 := <-ch3
	require.False(t, ok3, "ch3 should be closed immediately")

	// Publishing after close must not panic
	broker.Publish(UpdatedEvent, "late")
}

func TestBroker_CloseIdempotent(t *testing.T) {
	broker := NewBroker[string]()

	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}
