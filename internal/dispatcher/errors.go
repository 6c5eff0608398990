package dispatcher

import "errors"

var (
	// ErrNoHandler is reported when no handler is registered for a command.
	ErrNoHandler = errors.New("dispatcher: no handler for command")

	// ErrPanic wraps a recovered handler panic.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrNotStarted is returned by Sync before Start.
	ErrNotStarted = errors.New("dispatcher: not started")
)
