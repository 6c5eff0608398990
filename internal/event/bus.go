package event

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/dshills/folio/internal/event/dispatch"
	"github.com/dshills/folio/internal/event/topic"
)

// Bus is an ordered, multi-subscriber event bus.
type Bus interface {
	// Publish delivers evt to every active subscription whose pattern matches
	// its topic. evt must implement TopicProvider.
	Publish(ctx context.Context, evt any) error

	Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error

	Start() error
	// Stop drains pending asynchronous deliveries, then completes every
	// subscription. It fails with ErrBusNotRunning if already stopped.
	Stop(ctx context.Context) error

	Stats() Stats
	IsRunning() bool
}

const (
	stateCreated int32 = iota
	stateRunning
	stateStopped
)

type bus struct {
	registry *registry
	executor *dispatch.Executor
	config   busConfig

	state atomic.Int32
	seq   atomic.Uint64

	published atomic.Uint64
	delivered atomic.Uint64
	errors    atomic.Uint64
	panics    atomic.Uint64
}

// delivery is one queued async event.
type delivery struct {
	ctx   context.Context
	event any
}

// NewBus creates a bus. Call Start before publishing.
func NewBus(opts ...BusOption) Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &bus{
		registry: newRegistry(),
		config:   cfg,
	}
	b.executor = dispatch.NewExecutor(dispatch.WithPanicHandler(func(evt any, v any, _ []byte) {
		if cfg.panicHandler != nil {
			cfg.panicHandler(evt, v)
		}
	}))
	return b
}

func (b *bus) Start() error {
	if !b.state.CompareAndSwap(stateCreated, stateRunning) {
		if b.state.Load() == stateRunning {
			return ErrBusAlreadyRunning
		}
		return ErrBusNotRunning
	}
	return nil
}

func (b *bus) Stop(ctx context.Context) error {
	if b.state.Swap(stateStopped) == stateStopped {
		return ErrBusNotRunning
	}

	subs := b.registry.clear()
	for _, sub := range subs {
		if sub.mailbox != nil {
			sub.mailbox.Close(true)
		}
	}

	var err error
	for _, sub := range subs {
		if sub.mailbox != nil && err == nil {
			select {
			case <-sub.mailbox.Done():
			case <-ctx.Done():
				err = ctx.Err()
			}
		}
		sub.finish()
	}
	return err
}

func (b *bus) IsRunning() bool {
	return b.state.Load() == stateRunning
}

func (b *bus) Publish(ctx context.Context, evt any) error {
	if !b.IsRunning() {
		return ErrBusNotRunning
	}
	tp, ok := evt.(TopicProvider)
	if !ok {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return ErrInvalidEvent
	}

	b.published.Add(1)
	for _, sub := range b.registry.match(t) {
		if !sub.shouldDeliver(evt) {
			continue
		}
		if sub.mailbox == nil {
			b.deliver(ctx, sub, evt)
			continue
		}
		sub.mailbox.Push(delivery{ctx: context.WithoutCancel(ctx), event: evt})
	}
	return nil
}

func (b *bus) deliver(ctx context.Context, sub *subscription, evt any) {
	res := b.executor.Execute(ctx, evt, sub.handler)
	switch {
	case res.Panicked:
		b.panics.Add(1)
		perr := &PanicError{SubscriptionID: sub.id, Topic: topicOf(evt), Value: res.PanicValue}
		b.config.logger.Error("%v", perr)
	case res.Error != nil:
		b.errors.Add(1)
		herr := &HandlerError{SubscriptionID: sub.id, Topic: topicOf(evt), Err: res.Error}
		b.config.logger.Warn("%v", herr)
	case res.Success:
		b.delivered.Add(1)
	}
}

func (b *bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	if b.state.Load() == stateStopped {
		return nil, ErrBusNotRunning
	}

	seq := b.seq.Add(1)
	sub := newSubscription("sub-"+strconv.FormatUint(seq, 10), seq, pattern, handler, opts...)
	if sub.config.DeliveryMode == DeliveryAsync {
		sub.mailbox = dispatch.NewMailbox(func(item any) {
			d := item.(delivery)
			if sub.IsActive() {
				b.deliver(d.ctx, sub, d.event)
			}
		})
	}
	b.registry.add(sub)
	return sub, nil
}

func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

func (b *bus) Unsubscribe(s Subscription) error {
	if s == nil {
		return ErrInvalidSubscription
	}
	sub, ok := b.registry.remove(s.ID())
	if !ok {
		return ErrSubscriptionNotFound
	}
	sub.active.Store(false)
	if sub.mailbox == nil {
		sub.finish()
		return nil
	}
	sub.mailbox.Close(false)
	go func() {
		<-sub.mailbox.Done()
		sub.finish()
	}()
	return nil
}

func (b *bus) Stats() Stats {
	depth := 0
	for _, sub := range b.registry.all() {
		if sub.mailbox != nil {
			depth += sub.mailbox.Len()
		}
	}
	return Stats{
		EventsPublished:   b.published.Load(),
		EventsDelivered:   b.delivered.Load(),
		HandlerErrors:     b.errors.Load(),
		HandlerPanics:     b.panics.Load(),
		ActiveSubscribers: b.registry.count(),
		QueueDepth:        depth,
	}
}

func topicOf(evt any) string {
	if tp, ok := evt.(TopicProvider); ok {
		return tp.EventTopic().String()
	}
	return ""
}
