// Package script runs surface scripts in a sandboxed Lua state.
//
// Scripts are short Lua chunks such as `return reader.page_next()`. Only the
// base, table, string and math libraries are available; file loading and the
// package library are removed. Each evaluation runs under a deadline.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 2 * time.Second

var (
	// ErrClosed is returned when evaluating on a closed engine.
	ErrClosed = errors.New("script: engine is closed")

	// ErrTimeout is returned when an evaluation exceeds its deadline.
	ErrTimeout = errors.New("script: execution timeout")
)

// Engine wraps a gopher-lua state. LState is not goroutine-safe, so every
// call is serialized by mu.
type Engine struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-evaluation deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// New creates a sandboxed engine.
func New(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	sandbox(L)

	e.L = L
	return e
}

// sandbox removes globals that reach outside the state.
func sandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// RegisterModule installs a global table of Go functions.
func (e *Engine) RegisterModule(name string, funcs map[string]lua.LGFunction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	e.L.SetGlobal(name, e.L.SetFuncs(e.L.NewTable(), funcs))
	return nil
}

// Eval runs source and returns its first return value (LNil when the chunk
// returns nothing).
func (e *Engine) Eval(source string) (result lua.LValue, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return lua.LNil, ErrClosed
	}

	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	top := e.L.GetTop()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: panic: %v", r)
			result = lua.LNil
		}
		e.L.SetTop(top)
	}()

	fn, err := e.L.LoadString(source)
	if err != nil {
		return lua.LNil, fmt.Errorf("script: compile: %w", err)
	}
	e.L.Push(fn)
	if err := e.L.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			return lua.LNil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		return lua.LNil, fmt.Errorf("script: %w", err)
	}
	return e.L.Get(-1), nil
}

// EvalString runs source and returns its result as a string. A nil result
// yields "".
func (e *Engine) EvalString(source string) (string, error) {
	v, err := e.Eval(source)
	if err != nil {
		return "", err
	}
	if v == lua.LNil {
		return "", nil
	}
	return v.String(), nil
}

// Close releases the state. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.L.Close()
	return nil
}

// Strings reads a Lua array of strings at stack position n. Non-string
// entries are skipped.
func Strings(L *lua.LState, n int) []string {
	tbl := L.CheckTable(n)
	out := make([]string, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}
