package event

import (
	"sort"
	"sync"

	"github.com/dshills/folio/internal/event/topic"
)

// registry maps topic patterns to subscriptions.
type registry struct {
	mu      sync.RWMutex
	byTopic map[topic.Topic][]*subscription
	byID    map[string]*subscription
	matcher *topic.Matcher
}

func newRegistry() *registry {
	return &registry{
		byTopic: make(map[topic.Topic][]*subscription),
		byID:    make(map[string]*subscription),
		matcher: topic.NewMatcher(),
	}
}

func (r *registry) add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byTopic[sub.topic] = append(r.byTopic[sub.topic], sub)
	r.byID[sub.id] = sub
	r.matcher.Add(sub.topic)
}

func (r *registry) remove(id string) (*subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	subs := r.byTopic[sub.topic]
	for i, s := range subs {
		if s.id == id {
			r.byTopic[sub.topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(r.byTopic[sub.topic]) == 0 {
		delete(r.byTopic, sub.topic)
		r.matcher.Remove(sub.topic)
	}
	delete(r.byID, id)
	return sub, true
}

// match returns the active subscriptions for t in subscription order.
func (r *registry) match(t topic.Topic) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*subscription
	for _, pattern := range r.matcher.Match(t) {
		for _, sub := range r.byTopic[pattern] {
			if sub.IsActive() {
				out = append(out, sub)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (r *registry) all() []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*subscription, 0, len(r.byID))
	for _, sub := range r.byID {
		out = append(out, sub)
	}
	return out
}

func (r *registry) clear() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*subscription, 0, len(r.byID))
	for _, sub := range r.byID {
		out = append(out, sub)
	}
	r.byTopic = make(map[topic.Topic][]*subscription)
	r.byID = make(map[string]*subscription)
	r.matcher = topic.NewMatcher()
	return out
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
