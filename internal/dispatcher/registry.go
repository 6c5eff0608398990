package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/folio/internal/dispatcher/handler"
)

type entry struct {
	h    handler.Handler
	opts handler.Options
}

// Registry maps command names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]entry)}
}

// Register sets the handler for name, replacing any previous one.
func (r *Registry) Register(name string, h handler.Handler, opts ...handler.Option) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = entry{h: h, opts: handler.Apply(opts...)}
}

// Unregister removes the handler for name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

func (r *Registry) get(name string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.handlers[name]
	return e, ok
}

// Has reports whether name has a handler.
func (r *Registry) Has(name string) bool {
	_, ok := r.get(name)
	return ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
