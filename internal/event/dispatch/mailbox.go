package dispatch

import "sync"

// Mailbox is an unbounded FIFO queue with a single consumer goroutine.
// Items are delivered in push order.
type Mailbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []any
	closed  bool
	deliver func(any)
	done    chan struct{}
}

// NewMailbox starts a mailbox that passes each pushed item to deliver.
func NewMailbox(deliver func(any)) *Mailbox {
	m := &Mailbox{deliver: deliver, done: make(chan struct{})}
	m.cond = sync.NewCond(&m.mu)
	go m.run()
	return m
}

// Push enqueues an item. It returns false once the mailbox is closed.
func (m *Mailbox) Push(item any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.queue = append(m.queue, item)
	m.cond.Signal()
	return true
}

// Close stops intake. With drain set the consumer delivers what is already
// queued before exiting; otherwise pending items are discarded.
func (m *Mailbox) Close(drain bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if !drain {
		m.queue = nil
	}
	m.cond.Broadcast()
}

// Done is closed when the consumer goroutine has exited.
func (m *Mailbox) Done() <-chan struct{} {
	return m.done
}

// Len returns the number of queued items.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Mailbox) run() {
	defer close(m.done)
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		item := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		m.mu.Unlock()

		m.deliver(item)
	}
}
