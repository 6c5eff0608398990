package event

import (
	"context"

	"github.com/dshills/folio/internal/event/topic"
)

// Publisher publishes typed events on behalf of one source component.
type Publisher struct {
	bus    Bus
	source string
}

// NewPublisher creates a publisher stamping events with source.
func NewPublisher(bus Bus, source string) *Publisher {
	return &Publisher{bus: bus, source: source}
}

// Source returns the publisher's source name.
func (p *Publisher) Source() string {
	return p.source
}

// Bus returns the underlying bus.
func (p *Publisher) Bus() Bus {
	return p.bus
}

// Publish wraps payload in an Event[T] and publishes it.
func Publish[T any](ctx context.Context, p *Publisher, eventType topic.Topic, payload T) error {
	return p.bus.Publish(ctx, NewEvent(eventType, payload, p.source))
}
