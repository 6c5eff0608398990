// Package handler defines how the dispatcher executes commands.
package handler

import (
	"context"

	"github.com/dshills/folio/internal/command"
)

// Handler executes one command. A nil error means success.
type Handler interface {
	Handle(ctx context.Context, cmd command.Command) error
}

// Func adapts a function to Handler.
type Func func(ctx context.Context, cmd command.Command) error

// Handle calls f.
func (f Func) Handle(ctx context.Context, cmd command.Command) error {
	return f(ctx, cmd)
}

// Options describe a registered handler.
type Options struct {
	// LongRunning marks handlers that wait on the rendering surface.
	LongRunning bool
}

// Option configures registration.
type Option func(*Options)

// LongRunning marks the handler as one that waits on the rendering surface.
func LongRunning() Option {
	return func(o *Options) {
		o.LongRunning = true
	}
}

// Apply builds Options from opts.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Typed adapts a function over a concrete command type. Commands of any
// other type fail with ErrWrongCommand.
func Typed[C command.Command](fn func(ctx context.Context, cmd C) error) Handler {
	return Func(func(ctx context.Context, cmd command.Command) error {
		c, ok := cmd.(C)
		if !ok {
			return &WrongCommandError{Got: cmd.Name()}
		}
		return fn(ctx, c)
	})
}

// WrongCommandError reports a command routed to a handler of another type.
type WrongCommandError struct {
	Got string
}

func (e *WrongCommandError) Error() string {
	return "handler: unexpected command " + e.Got
}
