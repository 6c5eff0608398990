package event

import (
	"context"

	"github.com/dshills/folio/internal/event/dispatch"
)

// DeliveryMode selects how a subscription receives events.
type DeliveryMode int

const (
	// DeliveryAsync queues events in the subscription's FIFO mailbox.
	DeliveryAsync DeliveryMode = iota
	// DeliverySync runs the handler on the publishing goroutine.
	DeliverySync
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliveryAsync:
		return "async"
	case DeliverySync:
		return "sync"
	default:
		return "unknown"
	}
}

// Handler processes events.
type Handler = dispatch.Handler

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// TypedHandlerFunc handles events with a known payload type.
type TypedHandlerFunc[T any] func(ctx context.Context, event Event[T]) error

// AsHandlerFunc adapts a typed function to Handler. Events whose payload is
// not T are ignored.
func AsHandlerFunc[T any](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, evt any) error {
		if e, ok := evt.(Event[T]); ok {
			return fn(ctx, e)
		}
		return nil
	})
}

// FilterFunc decides whether an event reaches a subscription.
type FilterFunc func(event any) bool

// PanicHandler is notified of recovered handler panics.
type PanicHandler func(event any, recovered any)

// Stats holds bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
	QueueDepth        int
}
