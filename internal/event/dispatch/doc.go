// Package dispatch runs event handlers for the bus.
//
// Executor invokes one handler with panic recovery and timing. Mailbox is an
// unbounded FIFO queue drained by a single goroutine, giving each
// asynchronous subscriber in-order delivery without blocking publishers.
package dispatch
