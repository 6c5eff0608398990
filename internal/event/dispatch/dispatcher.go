package dispatch

import (
	"context"
	"time"
)

// Handler processes one event.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// Result is the outcome of one handler execution.
type Result struct {
	Success    bool
	Error      error
	Panicked   bool
	PanicValue any
	PanicStack []byte
	Duration   time.Duration
	// Skipped is set when the context was already done.
	Skipped bool
}

// PanicHandler is invoked after a handler panic has been recovered.
type PanicHandler func(event any, panicValue any, stack []byte)
