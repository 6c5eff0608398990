package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Connector tracks the currently attached surface. Attach and Detach may be
// called from any goroutine, typically the UI's.
type Connector struct {
	mu       sync.Mutex
	surface  Surface
	ready    chan struct{}
	listener Listener
}

// NewConnector creates a connector with no surface attached.
func NewConnector() *Connector {
	return &Connector{ready: make(chan struct{})}
}

// Attach makes s the current surface and wakes every waiter. A previously
// attached surface is detached first.
func (c *Connector) Attach(s Surface) {
	if s == nil {
		c.Detach()
		return
	}
	c.mu.Lock()
	prev := c.surface
	c.surface = s
	select {
	case <-c.ready:
	default:
		close(c.ready)
	}
	c.mu.Unlock()

	if prev != nil && prev != s {
		prev.SetListener(nil)
	}
	s.SetListener(c)
}

// Detach removes the current surface and returns it, if any.
func (c *Connector) Detach() Surface {
	c.mu.Lock()
	prev := c.surface
	c.surface = nil
	select {
	case <-c.ready:
		c.ready = make(chan struct{})
	default:
	}
	c.mu.Unlock()

	if prev != nil {
		prev.SetListener(nil)
	}
	return prev
}

// Current returns the attached surface.
func (c *Connector) Current() (Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface, c.surface != nil
}

// Wait blocks until a surface is attached, ctx is done or timeout elapses.
// The failure cases wrap ErrSurfaceDisconnected.
func (c *Connector) Wait(ctx context.Context, timeout time.Duration) (Surface, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		c.mu.Lock()
		s, ready := c.surface, c.ready
		c.mu.Unlock()
		if s != nil {
			return s, nil
		}

		select {
		case <-ready:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrSurfaceDisconnected, ctx.Err())
		case <-expired:
			return nil, fmt.Errorf("%w: none attached within %s", ErrSurfaceDisconnected, timeout)
		}
	}
}

// SetListener sets the receiver of notifications from attached surfaces.
func (c *Connector) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// PositionChanged forwards to the listener.
func (c *Connector) PositionChanged(url string, currentPage, pageCount int) {
	if l := c.currentListener(); l != nil {
		l.PositionChanged(url, currentPage, pageCount)
	}
}

// CenterTapped forwards to the listener.
func (c *Connector) CenterTapped() {
	if l := c.currentListener(); l != nil {
		l.CenterTapped()
	}
}

func (c *Connector) currentListener() Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listener
}
