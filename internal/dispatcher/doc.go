// Package dispatcher runs reader commands one at a time on a dedicated
// worker goroutine.
//
// Commands may be submitted from any goroutine. Each submission is wrapped in
// a Submission carrying a time-ordered ID and enqueued on an unbounded FIFO
// queue. The worker takes submissions strictly in arrival order, so no two
// handlers ever run concurrently and handlers may mutate session state
// without locks.
//
// # Lifecycle hooks
//
// For every executed submission the worker calls Hooks.Started, then
// Hooks.RunningLong when the handler was registered with
// handler.LongRunning, then exactly one Hooks.Finished carrying the
// handler's error. Internal tasks queued with Do run in the same FIFO order
// but without hooks.
//
// # States
//
// The dispatcher is Idle, Executing or Closed. Close is idempotent: it stops
// intake, cancels the context handed to handlers, waits for the in-flight
// command and drops whatever is still queued. Commands submitted after Close
// are accepted and resolved immediately as no-ops.
package dispatcher
