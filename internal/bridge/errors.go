package bridge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrTimeout is reported when a future does not settle in time.
	ErrTimeout = errors.New("bridge: timed out")

	// ErrBridgeClosed is reported for requests issued or pending at Close.
	ErrBridgeClosed = errors.New("bridge: closed")

	// ErrSurfaceDisconnected is reported when no surface is attached.
	ErrSurfaceDisconnected = errors.New("bridge: surface disconnected")

	// ErrMalformedResult is reported when a script reply cannot be decoded.
	ErrMalformedResult = errors.New("bridge: malformed script result")
)

// LoadError reports content that failed to load, keyed by URL.
type LoadError struct {
	Failures map[string]string
}

func (e *LoadError) Error() string {
	urls := make([]string, 0, len(e.Failures))
	for u := range e.Failures {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	parts := make([]string, 0, len(urls))
	for _, u := range urls {
		parts = append(parts, u+": "+e.Failures[u])
	}
	return "bridge: load failed: " + strings.Join(parts, "; ")
}

// ScriptError reports a failed script evaluation.
type ScriptError struct {
	Script string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("bridge: script %s: %v", e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
