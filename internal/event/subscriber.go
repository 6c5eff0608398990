package event

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/folio/internal/event/topic"
)

// Subscriber groups the subscriptions of one component so they can be
// released together.
type Subscriber struct {
	bus    Bus
	mu     sync.Mutex
	subs   []Subscription
	closed bool
}

// NewSubscriber creates a subscriber on bus.
func NewSubscriber(bus Bus) *Subscriber {
	return &Subscriber{bus: bus}
}

// Subscribe registers handler and tracks the subscription.
func (s *Subscriber) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrInvalidSubscription
	}
	sub, err := s.bus.Subscribe(pattern, handler, opts...)
	if err != nil {
		return nil, err
	}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// SubscribePayload subscribes a handler that receives only the payload of
// Event[T] values.
func SubscribePayload[T any](s *Subscriber, pattern topic.Topic, handler func(ctx context.Context, payload T) error, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(pattern, AsHandlerFunc(func(ctx context.Context, e Event[T]) error {
		return handler(ctx, e.Payload)
	}), opts...)
}

// Count returns the number of tracked subscriptions.
func (s *Subscriber) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close unsubscribes everything. Subscriptions already completed by a
// stopped bus are skipped.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := s.bus.Unsubscribe(sub); err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
