package topic

import "sync"

// Matcher indexes subscription patterns in a segment trie so that the
// patterns matching a published topic can be found without scanning every
// pattern. It is safe for concurrent use.
type Matcher struct {
	mu   sync.RWMutex
	root *trieNode
}

type trieNode struct {
	children map[string]*trieNode
	pattern  Topic
	terminal bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{root: newTrieNode()}
}

// Add registers a pattern. Adding a pattern twice is a no-op.
func (m *Matcher) Add(pattern Topic) {
	if pattern == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	node := m.root
	for _, seg := range pattern.Segments() {
		child := node.children[seg]
		if child == nil {
			child = newTrieNode()
			node.children[seg] = child
		}
		node = child
	}
	node.pattern = pattern
	node.terminal = true
}

// Remove unregisters a pattern and prunes empty branches.
func (m *Matcher) Remove(pattern Topic) {
	if pattern == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	remove(m.root, pattern.Segments())
}

// remove reports whether node became empty.
func remove(node *trieNode, segs []string) bool {
	if len(segs) == 0 {
		node.terminal = false
		node.pattern = ""
		return len(node.children) == 0
	}
	child := node.children[segs[0]]
	if child == nil {
		return false
	}
	if remove(child, segs[1:]) {
		delete(node.children, segs[0])
	}
	return !node.terminal && len(node.children) == 0
}

// Has reports whether pattern is registered.
func (m *Matcher) Has(pattern Topic) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node := m.root
	for _, seg := range pattern.Segments() {
		if node = node.children[seg]; node == nil {
			return false
		}
	}
	return node.terminal
}

// Match returns every registered pattern matching the topic, each once.
func (m *Matcher) Match(t Topic) []Topic {
	if t == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[*trieNode]struct{})
	var out []Topic
	var walk func(node *trieNode, segs []string)
	walk = func(node *trieNode, segs []string) {
		if len(segs) == 0 && node.terminal {
			if _, dup := seen[node]; !dup {
				seen[node] = struct{}{}
				out = append(out, node.pattern)
			}
		}
		if child := node.children[WildcardMulti]; child != nil {
			for i := 0; i <= len(segs); i++ {
				walk(child, segs[i:])
			}
		}
		if len(segs) == 0 {
			return
		}
		if child := node.children[segs[0]]; child != nil {
			walk(child, segs[1:])
		}
		if child := node.children[WildcardSingle]; child != nil {
			walk(child, segs[1:])
		}
	}
	walk(m.root, t.Segments())
	return out
}

// Count returns the number of registered patterns.
func (m *Matcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count func(*trieNode) int
	count = func(n *trieNode) int {
		c := 0
		if n.terminal {
			c++
		}
		for _, child := range n.children {
			c += count(child)
		}
		return c
	}
	return count(m.root)
}
