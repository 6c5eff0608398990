package app

import (
	"errors"
	"fmt"
)

// ErrQuit signals that the reader asked to exit.
var ErrQuit = errors.New("quit requested")

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
