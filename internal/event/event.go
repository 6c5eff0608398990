package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/folio/internal/event/topic"
)

// Event is a typed event envelope.
type Event[T any] struct {
	Type     topic.Topic
	Payload  T
	Metadata Metadata
}

// Metadata describes an event occurrence.
type Metadata struct {
	// ID is a time-ordered unique identifier.
	ID        string
	Timestamp time.Time
	// Source names the publishing component.
	Source string
}

// NewEvent creates an event stamped with a fresh ID and the current time.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        newID(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic implements TopicProvider.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata implements MetadataProvider.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// TopicProvider is implemented by anything publishable.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by events that carry metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
