package dispatcher

import (
	"sort"
	"sync"
	"time"
)

// Metrics records command execution statistics.
type Metrics struct {
	mu sync.RWMutex

	commands map[string]*CommandMetrics

	total    uint64
	errors   uint64
	panics   uint64
	duration time.Duration
}

// CommandMetrics holds statistics for one command name.
type CommandMetrics struct {
	Name          string
	Count         uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastRun       time.Time
}

// AverageDuration returns the mean execution time.
func (cm CommandMetrics) AverageDuration() time.Duration {
	if cm.Count == 0 {
		return 0
	}
	return cm.TotalDuration / time.Duration(cm.Count)
}

// NewMetrics creates empty metrics.
func NewMetrics() *Metrics {
	return &Metrics{commands: make(map[string]*CommandMetrics)}
}

// Record adds one execution.
func (m *Metrics) Record(name string, d time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.duration += d
	if failed {
		m.errors++
	}

	cm := m.commands[name]
	if cm == nil {
		cm = &CommandMetrics{Name: name, MinDuration: d, MaxDuration: d}
		m.commands[name] = cm
	}
	cm.Count++
	cm.TotalDuration += d
	cm.LastRun = time.Now()
	cm.MinDuration = min(cm.MinDuration, d)
	cm.MaxDuration = max(cm.MaxDuration, d)
	if failed {
		cm.ErrorCount++
	}
}

// RecordPanic counts a recovered panic.
func (m *Metrics) RecordPanic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics++
}

// Command returns a copy of the statistics for name.
func (m *Metrics) Command(name string) (CommandMetrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cm := m.commands[name]
	if cm == nil {
		return CommandMetrics{}, false
	}
	return *cm, true
}

// Slowest returns up to n commands ordered by average duration.
func (m *Metrics) Slowest(n int) []CommandMetrics {
	m.mu.RLock()
	out := make([]CommandMetrics, 0, len(m.commands))
	for _, cm := range m.commands {
		out = append(out, *cm)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].AverageDuration() > out[j].AverageDuration()
	})
	return out[:min(n, len(out))]
}

// MetricsSnapshot is a point-in-time summary.
type MetricsSnapshot struct {
	Total           uint64
	Errors          uint64
	Panics          uint64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	CommandCount    int
}

// Snapshot summarizes the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		Total:         m.total,
		Errors:        m.errors,
		Panics:        m.panics,
		TotalDuration: m.duration,
		CommandCount:  len(m.commands),
	}
	if m.total > 0 {
		s.AverageDuration = m.duration / time.Duration(m.total)
	}
	return s
}
