package bridge

import (
	"context"
	"sync"
	"time"
)

// Future is the read side of a single-assignment asynchronous value.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// Promise is the write side of a Future.
type Promise[T any] struct {
	f *Future[T]
}

// NewPromise creates a linked promise and future.
func NewPromise[T any]() (*Promise[T], *Future[T]) {
	f := &Future[T]{done: make(chan struct{})}
	return &Promise[T]{f: f}, f
}

// Resolve settles the future with v. It reports false if already settled.
func (p *Promise[T]) Resolve(v T) bool {
	return p.f.settle(v, nil)
}

// Reject settles the future with err. It reports false if already settled.
func (p *Promise[T]) Reject(err error) bool {
	var zero T
	return p.f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	settled := false
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
		settled = true
	})
	return settled
}

// Resolved returns a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	p, f := NewPromise[T]()
	p.Resolve(v)
	return f
}

// Rejected returns a future already settled with err.
func Rejected[T any](err error) *Future[T] {
	p, f := NewPromise[T]()
	p.Reject(err)
	return f
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a future settled with fn applied to f's value. Rejections
// pass through without calling fn.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	p, out := NewPromise[U]()
	go func() {
		<-f.done
		if f.err != nil {
			p.Reject(f.err)
			return
		}
		u, err := fn(f.val)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(u)
	}()
	return out
}

// WithTimeout returns a future that mirrors f, or is rejected with
// ErrTimeout if f has not settled within d.
func WithTimeout[T any](f *Future[T], d time.Duration) *Future[T] {
	if d <= 0 {
		return f
	}
	p, out := NewPromise[T]()
	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-f.done:
			p.f.settle(f.val, f.err)
		case <-timer.C:
			p.Reject(ErrTimeout)
		}
	}()
	return out
}
