// Package pubsub provides a generic publish/subscribe event system.
// Long-lived collaborators (the transport client, the docs watcher, the
// logger) publish on a Broker; the update loop consumes events through a
// ContinuousListener so they arrive as ordinary tea messages.
package pubsub

import (
	"context"
	"time"
)

// EventType classifies the lifecycle of the published payload.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event carries a typed payload to subscribers.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
