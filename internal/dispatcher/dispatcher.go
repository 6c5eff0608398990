package dispatcher

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/dispatcher/handler"
	"github.com/dshills/folio/internal/logging"
)

// State is the dispatcher's execution state.
type State int32

const (
	StateIdle State = iota
	StateExecuting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Submission wraps a command with queueing metadata.
type Submission struct {
	ID          string
	SubmittedAt time.Time
	Command     command.Command
}

// task is one queue entry: a submission, an internal function or a barrier.
type task struct {
	sub  *Submission
	fn   func(ctx context.Context)
	done chan struct{}
}

// Dispatcher executes commands sequentially on one worker goroutine.
type Dispatcher struct {
	registry *Registry
	metrics  *Metrics
	config   Config
	hooks    Hooks
	logger   *logging.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []task
	closed  bool
	started bool

	state   atomic.Int32
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// New creates a dispatcher. Call Start to launch the worker.
func New(config Config, opts ...Option) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		registry: NewRegistry(),
		config:   config,
		logger:   logging.Nop(),
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewWithDefaults creates a dispatcher with the default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics, or nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// State returns the current state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// RegisterHandler registers h for the command name.
func (d *Dispatcher) RegisterHandler(name string, h handler.Handler, opts ...handler.Option) {
	d.registry.Register(name, h, opts...)
}

// Start launches the worker. Calling Start more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.run()
}

// Submit enqueues cmd. It never blocks and never fails; after Close the
// submission is resolved immediately as a no-op.
func (d *Dispatcher) Submit(cmd command.Command) Submission {
	sub := Submission{
		ID:          newSubmissionID(),
		SubmittedAt: time.Now(),
		Command:     cmd,
	}
	if !d.enqueue(task{sub: &sub}) {
		d.logger.Debug("dropping %s submitted after close", cmd.Name())
	}
	return sub
}

// Do enqueues an internal task that runs on the worker without lifecycle
// hooks. It reports false if the dispatcher is closed.
func (d *Dispatcher) Do(fn func(ctx context.Context)) bool {
	return d.enqueue(task{fn: fn})
}

// Sync waits until every task enqueued before the call has finished. It
// returns nil immediately once the dispatcher is closed.
func (d *Dispatcher) Sync(ctx context.Context) error {
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	done := make(chan struct{})
	if !d.enqueue(task{done: done}) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the dispatcher. Queued work is dropped, the in-flight command
// is awaited until ctx expires. Close is idempotent.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		dropped := d.queue
		d.queue = nil
		started := d.started
		d.cond.Broadcast()
		d.mu.Unlock()

		d.state.Store(int32(StateClosed))
		d.cancel()
		for _, t := range dropped {
			if t.done != nil {
				close(t.done)
			}
		}
		if len(dropped) > 0 {
			d.logger.Debug("dropped %d queued tasks on close", len(dropped))
		}
		if !started {
			close(d.stopped)
		}
	})

	select {
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(t task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.queue = append(d.queue, t)
	d.cond.Signal()
	return true
}

func (d *Dispatcher) next() (task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) == 0 && !d.closed {
		d.cond.Wait()
	}
	if d.closed {
		return task{}, false
	}
	t := d.queue[0]
	d.queue[0] = task{}
	d.queue = d.queue[1:]
	return t, true
}

func (d *Dispatcher) run() {
	defer close(d.stopped)
	for {
		t, ok := d.next()
		if !ok {
			return
		}
		switch {
		case t.sub != nil:
			d.execute(*t.sub)
		case t.fn != nil:
			if err := d.protect(func() error { t.fn(d.ctx); return nil }); err != nil {
				d.logger.Error("internal task: %v", err)
			}
		}
		if t.done != nil {
			close(t.done)
		}
	}
}

func (d *Dispatcher) execute(sub Submission) {
	d.state.CompareAndSwap(int32(StateIdle), int32(StateExecuting))
	defer d.state.CompareAndSwap(int32(StateExecuting), int32(StateIdle))

	name := sub.Command.Name()
	e, ok := d.registry.get(name)

	d.hooks.started(sub)
	if ok && e.opts.LongRunning {
		d.hooks.runningLong(sub)
	}

	start := time.Now()
	var err error
	if ok {
		err = d.protect(func() error { return e.h.Handle(d.ctx, sub.Command) })
	} else {
		err = fmt.Errorf("%w: %s", ErrNoHandler, name)
	}
	elapsed := time.Since(start)

	if err != nil {
		d.logger.Debug("%s failed after %s: %v", name, elapsed, err)
	}
	if d.metrics != nil {
		d.metrics.Record(name, elapsed, err != nil)
	}
	d.hooks.finished(sub, err, elapsed)
}

// protect runs fn, converting a panic into an ErrPanic error when recovery
// is enabled.
func (d *Dispatcher) protect(fn func() error) (err error) {
	if !d.config.RecoverFromPanic {
		return fn()
	}
	defer func() {
		if r := recover(); r != nil {
			if d.metrics != nil {
				d.metrics.RecordPanic()
			}
			d.logger.Error("handler panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}

func newSubmissionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
