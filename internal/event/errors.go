package event

import (
	"errors"
	"fmt"
)

// Bus errors.
var (
	ErrBusNotRunning        = errors.New("event: bus is not running")
	ErrBusAlreadyRunning    = errors.New("event: bus is already running")
	ErrInvalidEvent         = errors.New("event: invalid event")
	ErrInvalidTopic         = errors.New("event: invalid topic")
	ErrInvalidSubscription  = errors.New("event: invalid subscription")
	ErrSubscriptionNotFound = errors.New("event: subscription not found")
	ErrNilHandler           = errors.New("event: handler cannot be nil")
	ErrHandlerPanic         = errors.New("event: handler panicked")
)

// HandlerError wraps an error returned by a subscription handler.
type HandlerError struct {
	SubscriptionID string
	Topic          string
	Err            error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("event: handler for subscription %s on %s: %v", e.SubscriptionID, e.Topic, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError describes a recovered handler panic.
type PanicError struct {
	SubscriptionID string
	Topic          string
	Value          any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("event: handler for subscription %s on %s panicked: %v", e.SubscriptionID, e.Topic, e.Value)
}

// Is matches ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
