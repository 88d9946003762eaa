package dispatch

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects command invocation statistics.
type Metrics struct {
	mu sync.RWMutex

	commands map[string]*CommandMetrics

	totalInvocations uint64
	totalErrors      uint64
	totalDuration    time.Duration
}

// CommandMetrics holds metrics for one command.
type CommandMetrics struct {
	Name          string
	Invocations   uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
	LastInvoked   time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{commands: make(map[string]*CommandMetrics)}
}

// Record records one invocation.
func (m *Metrics) Record(name string, duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalInvocations++
	m.totalDuration += duration
	if failed {
		m.totalErrors++
	}

	cm := m.commands[name]
	if cm == nil {
		cm = &CommandMetrics{Name: name}
		m.commands[name] = cm
	}
	cm.Invocations++
	cm.TotalDuration += duration
	cm.LastInvoked = time.Now()
	if duration > cm.MaxDuration {
		cm.MaxDuration = duration
	}
	if failed {
		cm.ErrorCount++
	}
}

// TotalInvocations returns the total number of invocations.
func (m *Metrics) TotalInvocations() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalInvocations
}

// TotalErrors returns the number of failed invocations.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalErrors
}

// CommandStats returns a copy of the metrics for a command.
func (m *Metrics) CommandStats(name string) (CommandMetrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cm, ok := m.commands[name]
	if !ok {
		return CommandMetrics{}, false
	}
	return *cm, true
}

// TopCommands returns the n most invoked commands.
func (m *Metrics) TopCommands(n int) []CommandMetrics {
	m.mu.RLock()
	out := make([]CommandMetrics, 0, len(m.commands))
	for _, cm := range m.commands {
		out = append(out, *cm)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Invocations != out[j].Invocations {
			return out[i].Invocations > out[j].Invocations
		}
		return out[i].Name < out[j].Name
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = make(map[string]*CommandMetrics)
	m.totalInvocations = 0
	m.totalErrors = 0
	m.totalDuration = 0
}
