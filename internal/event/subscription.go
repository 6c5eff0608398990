package event

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/folio/internal/event/dispatch"
	"github.com/dshills/folio/internal/event/topic"
)

// Subscription is a handle to a registered handler.
type Subscription interface {
	ID() string
	Topic() topic.Topic
	IsActive() bool
	// Done is closed when the subscription will receive no further events,
	// either because it was cancelled or because the bus stopped.
	Done() <-chan struct{}
}

// SubscriptionConfig holds per-subscription settings.
type SubscriptionConfig struct {
	DeliveryMode DeliveryMode
	Filter       FilterFunc
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithDeliveryMode selects sync or async delivery.
func WithDeliveryMode(m DeliveryMode) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.DeliveryMode = m
	}
}

// WithFilter sets a predicate applied before delivery.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

type subscription struct {
	id      string
	seq     uint64
	topic   topic.Topic
	handler Handler
	config  SubscriptionConfig
	mailbox *dispatch.Mailbox

	active    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscription(id string, seq uint64, t topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	var cfg SubscriptionConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &subscription{
		id:      id,
		seq:     seq,
		topic:   t,
		handler: h,
		config:  cfg,
		done:    make(chan struct{}),
	}
	s.active.Store(true)
	return s
}

func (s *subscription) ID() string            { return s.id }
func (s *subscription) Topic() topic.Topic    { return s.topic }
func (s *subscription) IsActive() bool        { return s.active.Load() }
func (s *subscription) Done() <-chan struct{} { return s.done }

func (s *subscription) shouldDeliver(evt any) bool {
	if !s.IsActive() {
		return false
	}
	return s.config.Filter == nil || s.config.Filter(evt)
}

// finish marks the subscription inactive and closes Done exactly once.
func (s *subscription) finish() {
	s.active.Store(false)
	s.closeOnce.Do(func() { close(s.done) })
}
