package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/folio/internal/logging"
)

// request is one queued surface call.
type request struct {
	ctx    context.Context
	run    func(Surface)
	reject func(error)
}

// Serial is a Bridge that drives the connector's current surface from one
// goroutine, one request at a time, in arrival order.
type Serial struct {
	conn   *Connector
	logger *logging.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []request
	closed bool
	done   chan struct{}
}

// NewSerial starts a serial bridge over conn.
func NewSerial(conn *Connector, logger *logging.Logger) *Serial {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Serial{conn: conn, logger: logger, done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// OpenLocation loads url into the surface.
func (s *Serial) OpenLocation(ctx context.Context, url string) *Future[struct{}] {
	p, f := NewPromise[struct{}]()
	s.enqueue(request{
		ctx: ctx,
		run: func(sf Surface) {
			if err := sf.Load(url); err != nil {
				var le *LoadError
				if !errors.As(err, &le) {
					err = &LoadError{Failures: map[string]string{url: err.Error()}}
				}
				p.Reject(err)
				return
			}
			p.Resolve(struct{}{})
		},
		reject: func(err error) { p.Reject(err) },
	})
	return f
}

// RunScript evaluates sc on the surface and decodes the reply.
func (s *Serial) RunScript(ctx context.Context, sc Script) *Future[Result] {
	p, f := NewPromise[Result]()
	s.enqueue(request{
		ctx: ctx,
		run: func(sf Surface) {
			reply, err := sf.Evaluate(sc.Source())
			if err != nil {
				p.Reject(&ScriptError{Script: sc.Name(), Err: err})
				return
			}
			res, err := ParseResult(reply)
			if err != nil {
				p.Reject(&ScriptError{Script: sc.Name(), Err: err})
				return
			}
			p.Resolve(res)
		},
		reject: func(err error) { p.Reject(err) },
	})
	return f
}

// Close rejects queued requests with ErrBridgeClosed and waits for the
// in-flight request to finish. Requests issued afterwards fail immediately.
func (s *Serial) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	pending := s.queue
	s.queue = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	for _, r := range pending {
		r.reject(ErrBridgeClosed)
	}
	<-s.done
	return nil
}

func (s *Serial) enqueue(r request) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		r.reject(ErrBridgeClosed)
		return
	}
	s.queue = append(s.queue, r)
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *Serial) loop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		r := s.queue[0]
		s.queue[0] = request{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.process(r)
	}
}

func (s *Serial) process(r request) {
	if err := r.ctx.Err(); err != nil {
		r.reject(err)
		return
	}
	sf, ok := s.conn.Current()
	if !ok {
		r.reject(ErrSurfaceDisconnected)
		return
	}
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("surface panic: %v", v)
			r.reject(&ScriptError{Script: "surface", Err: errors.New("surface panicked")})
		}
	}()
	r.run(sf)
}
