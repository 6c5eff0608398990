package event_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
)

type note struct{ N int }

func startedBus(t *testing.T, opts ...event.BusOption) event.Bus {
	t.Helper()
	b := event.NewBus(opts...)
	require.NoError(t, b.Start())
	t.Cleanup(func() { _ = b.Stop(context.Background()) })
	return b
}

func stop(t *testing.T, b event.Bus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Stop(ctx))
}

func TestBusLifecycle(t *testing.T) {
	b := event.NewBus()
	assert.False(t, b.IsRunning())
	assert.ErrorIs(t, b.Publish(context.Background(), event.NewEvent("a.b", note{}, "test")), event.ErrBusNotRunning)

	require.NoError(t, b.Start())
	assert.True(t, b.IsRunning())
	assert.ErrorIs(t, b.Start(), event.ErrBusAlreadyRunning)

	stop(t, b)
	assert.False(t, b.IsRunning())
	assert.ErrorIs(t, b.Stop(context.Background()), event.ErrBusNotRunning)
	assert.ErrorIs(t, b.Start(), event.ErrBusNotRunning)

	_, err := b.SubscribeFunc("a.b", func(context.Context, any) error { return nil })
	assert.ErrorIs(t, err, event.ErrBusNotRunning)
}

func TestBusRejectsInvalidInput(t *testing.T) {
	b := startedBus(t)

	assert.ErrorIs(t, b.Publish(context.Background(), "not an event"), event.ErrInvalidEvent)
	assert.ErrorIs(t, b.Publish(context.Background(), event.NewEvent("a.*", note{}, "test")), event.ErrInvalidEvent)

	_, err := b.Subscribe("a.b", nil)
	assert.ErrorIs(t, err, event.ErrNilHandler)
	_, err = b.SubscribeFunc("", func(context.Context, any) error { return nil })
	assert.ErrorIs(t, err, event.ErrInvalidTopic)
}

func TestBusAsyncPreservesOrderPerSubscriber(t *testing.T) {
	b := event.NewBus()
	require.NoError(t, b.Start())

	const n = 1000
	var mu sync.Mutex
	got := map[string][]int{}
	for _, name := range []string{"first", "second"} {
		name := name
		_, err := b.Subscribe("reader.**", event.AsHandlerFunc(func(_ context.Context, e event.Event[note]) error {
			if name == "first" && e.Payload.N%100 == 0 {
				time.Sleep(time.Millisecond)
			}
			mu.Lock()
			got[name] = append(got[name], e.Payload.N)
			mu.Unlock()
			return nil
		}))
		require.NoError(t, err)
	}

	for i := 0; i < n; i++ {
		require.NoError(t, b.Publish(context.Background(), event.NewEvent("reader.position.changed", note{N: i}, "test")))
	}
	stop(t, b)

	for _, name := range []string{"first", "second"} {
		require.Len(t, got[name], n, name)
		for i, v := range got[name] {
			require.Equal(t, i, v, name)
		}
	}
}

func TestBusMulticastAndLateSubscriber(t *testing.T) {
	b := event.NewBus()
	require.NoError(t, b.Start())

	var early, late atomic.Int32
	_, err := b.SubscribeFunc("reader.bookmark.*", func(context.Context, any) error {
		early.Add(1)
		return nil
	}, event.WithDeliveryMode(event.DeliverySync))
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), event.NewEvent("reader.bookmark.created", note{}, "test")))

	_, err = b.SubscribeFunc("reader.bookmark.*", func(context.Context, any) error {
		late.Add(1)
		return nil
	}, event.WithDeliveryMode(event.DeliverySync))
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), event.NewEvent("reader.bookmark.deleted", note{}, "test")))
	require.NoError(t, b.Publish(context.Background(), event.NewEvent("reader.theme.changed", note{}, "test")))
	stop(t, b)

	assert.Equal(t, int32(2), early.Load())
	assert.Equal(t, int32(1), late.Load())
}

func TestBusSyncDeliveryRunsInline(t *testing.T) {
	b := startedBus(t)

	delivered := false
	_, err := b.SubscribeFunc("x.y", func(context.Context, any) error {
		delivered = true
		return nil
	}, event.WithDeliveryMode(event.DeliverySync))
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), event.NewEvent("x.y", note{}, "test")))
	assert.True(t, delivered)
}

func TestBusIsolatesPanicsAndErrors(t *testing.T) {
	var recovered atomic.Value
	b := event.NewBus(event.WithPanicHandler(func(_ any, v any) { recovered.Store(v) }))
	require.NoError(t, b.Start())

	var healthy atomic.Int32
	inline := event.WithDeliveryMode(event.DeliverySync)
	_, err := b.SubscribeFunc("x.y", func(context.Context, any) error { panic("bad handler") }, inline)
	require.NoError(t, err)
	_, err = b.SubscribeFunc("x.y", func(context.Context, any) error { return errors.New("nope") }, inline)
	require.NoError(t, err)
	_, err = b.SubscribeFunc("x.y", func(context.Context, any) error {
		healthy.Add(1)
		return nil
	}, inline)
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), event.NewEvent("x.y", note{}, "test")))

	stats := b.Stats()
	assert.Equal(t, int32(1), healthy.Load())
	assert.Equal(t, uint64(1), stats.HandlerPanics)
	assert.Equal(t, uint64(1), stats.HandlerErrors)
	assert.Equal(t, uint64(1), stats.EventsDelivered)
	assert.Equal(t, uint64(1), stats.EventsPublished)
	assert.Equal(t, 3, stats.ActiveSubscribers)
	assert.Equal(t, "bad handler", recovered.Load())
	stop(t, b)
}

func TestBusStopCompletesSubscriptions(t *testing.T) {
	b := event.NewBus()
	require.NoError(t, b.Start())

	var count atomic.Int32
	sub, err := b.SubscribeFunc("x.**", func(context.Context, any) error {
		time.Sleep(100 * time.Microsecond)
		count.Add(1)
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NoError(t, b.Publish(context.Background(), event.NewEvent("x.y", note{N: i}, "test")))
	}
	stop(t, b)

	select {
	case <-sub.Done():
	default:
		t.Fatal("subscription not completed after Stop")
	}
	assert.Equal(t, int32(50), count.Load())
	assert.False(t, sub.IsActive())
	assert.ErrorIs(t, b.Publish(context.Background(), event.NewEvent("x.y", note{}, "test")), event.ErrBusNotRunning)
}

func TestBusUnsubscribe(t *testing.T) {
	b := startedBus(t)

	var count atomic.Int32
	sub, err := b.SubscribeFunc("x.y", func(context.Context, any) error {
		count.Add(1)
		return nil
	}, event.WithDeliveryMode(event.DeliverySync))
	require.NoError(t, err)

	require.NoError(t, b.Unsubscribe(sub))
	<-sub.Done()
	require.NoError(t, b.Publish(context.Background(), event.NewEvent("x.y", note{}, "test")))
	assert.Zero(t, count.Load())

	assert.ErrorIs(t, b.Unsubscribe(sub), event.ErrSubscriptionNotFound)
	assert.ErrorIs(t, b.Unsubscribe(nil), event.ErrInvalidSubscription)

	async, err := b.SubscribeFunc("x.y", func(context.Context, any) error { return nil })
	require.NoError(t, err)
	require.NoError(t, b.Unsubscribe(async))
	select {
	case <-async.Done():
	case <-time.After(time.Second):
		t.Fatal("async subscription not completed")
	}
}

func TestTypedHandlersAndFilters(t *testing.T) {
	b := startedBus(t)
	pub := event.NewPublisher(b, "reader")
	other := event.NewPublisher(b, "other")

	var got []int
	_, err := b.Subscribe("x.y", event.AsHandlerFunc(func(_ context.Context, e event.Event[note]) error {
		got = append(got, e.Payload.N)
		return nil
	}),
		event.WithDeliveryMode(event.DeliverySync),
		event.WithFilter(event.FilterBySource("reader")),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, event.Publish(ctx, pub, "x.y", note{N: 1}))
	require.NoError(t, event.Publish(ctx, pub, "x.y", "wrong payload type"))
	require.NoError(t, event.Publish(ctx, other, "x.y", note{N: 2}))
	require.NoError(t, event.Publish(ctx, pub, "x.y", note{N: 3}))

	assert.Equal(t, []int{1, 3}, got)
	assert.Equal(t, "reader", pub.Source())
}

func TestFilterPayload(t *testing.T) {
	even := event.FilterPayload(func(n note) bool { return n.N%2 == 0 })

	assert.True(t, even(event.NewEvent[note]("a.b", note{N: 2}, "")))
	assert.False(t, even(event.NewEvent[note]("a.b", note{N: 3}, "")))
	assert.False(t, even("other"))
	assert.True(t, event.FilterNot(even)(event.NewEvent[note]("a.b", note{N: 3}, "")))
}

func TestSubscriberPayloadAndClose(t *testing.T) {
	b := startedBus(t)
	s := event.NewSubscriber(b)

	var got []int
	_, err := event.SubscribePayload(s, "x.*", func(_ context.Context, n note) error {
		got = append(got, n.N)
		return nil
	}, event.WithDeliveryMode(event.DeliverySync))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count())

	pub := event.NewPublisher(b, "test")
	require.NoError(t, event.Publish(context.Background(), pub, "x.a", note{N: 7}))
	require.NoError(t, s.Close())
	require.NoError(t, event.Publish(context.Background(), pub, "x.a", note{N: 8}))

	assert.Equal(t, []int{7}, got)
	_, err = s.Subscribe("x.b", event.HandlerFunc(func(context.Context, any) error { return nil }))
	assert.ErrorIs(t, err, event.ErrInvalidSubscription)
}

func TestEventMetadata(t *testing.T) {
	a := event.NewEvent(topic.Topic("x.y"), note{}, "src")
	b := event.NewEvent(topic.Topic("x.y"), note{}, "src")

	assert.NotEmpty(t, a.Metadata.ID)
	assert.NotEqual(t, a.Metadata.ID, b.Metadata.ID)
	assert.Equal(t, "src", a.EventMetadata().Source)
	assert.Equal(t, topic.Topic("x.y"), a.EventTopic())
	assert.False(t, a.Metadata.Timestamp.IsZero())
}
