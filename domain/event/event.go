// Package event provides the in-process domain event dispatcher.
//
// Handlers are registered per event Name and notified synchronously, in
// registration order, on the caller's goroutine. There is no queueing, retry or
// cross-process delivery.
package event

import (
	"context"
	"time"
)

// Name tags an event variant and keys the dispatcher registry.
type Name string

func (n Name) String() string { return string(n) }

// Event is an immutable record of something that happened in the domain.
type Event interface {
	EventName() Name
	OccurredAt() time.Time
	EventData() any
}

// Handler reacts to one event. Handlers are compared with == when
// unregistering, so implementations should be pointers.
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// Base carries the creation timestamp shared by every concrete event.
type Base struct {
	occurredAt time.Time
}

// NewBase stamps the current time.
func NewBase() Base {
	return Base{occurredAt: time.Now()}
}

func (b Base) OccurredAt() time.Time { return b.occurredAt }
