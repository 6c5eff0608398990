// Package event provides the ordered, multi-subscriber event bus through which
// a reading session reports what happened.
//
// Events are published under hierarchical topics (see package topic) and
// delivered to every subscription whose pattern matches. A subscriber that
// joins late misses earlier events.
//
// # Delivery
//
// DeliveryAsync (the default) gives every subscription its own FIFO mailbox
// drained by one goroutine, so a subscriber observes events in the order
// they were published and a slow subscriber never blocks the publisher.
// DeliverySync runs the handler on the publishing goroutine.
//
// # Typed events
//
// Event[T] carries a payload with metadata. AsHandlerFunc adapts a typed
// function into a Handler, ignoring events of other payload types:
//
//	sub, err := bus.Subscribe("reader.position.changed",
//		event.AsHandlerFunc(func(ctx context.Context, e event.Event[events.PositionChanged]) error {
//			fmt.Println(e.Payload.ChapterIndex)
//			return nil
//		}))
//
// # Completion
//
// Stop drains every asynchronous mailbox and then closes each subscription's
// Done channel. Publishing after Stop fails with ErrBusNotRunning.
package event
