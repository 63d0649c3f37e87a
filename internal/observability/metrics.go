package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector provides hooks for dispatch metrics.
type MetricsCollector interface {
	AttemptStarted()
	AttemptFinished()
	Retried()
	Succeeded(bytes int, latency time.Duration)
	Failed(kind string, latency time.Duration)
}

// InMemoryMetrics is a simple in-memory implementation for tests and the
// batch summary.
type InMemoryMetrics struct {
	started       atomic.Int64
	succeeded     atomic.Int64
	failed        atomic.Int64
	retried       atomic.Int64
	responseBytes atomic.Int64

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	failures    map[string]int64
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{failures: make(map[string]int64)}
}

func (m *InMemoryMetrics) AttemptStarted() {
	m.started.Add(1)
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
}

func (m *InMemoryMetrics) AttemptFinished() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

func (m *InMemoryMetrics) Retried() {
	m.retried.Add(1)
}

func (m *InMemoryMetrics) Succeeded(bytes int, _ time.Duration) {
	m.succeeded.Add(1)
	m.responseBytes.Add(int64(bytes))
}

func (m *InMemoryMetrics) Failed(kind string, _ time.Duration) {
	m.failed.Add(1)
	m.mu.Lock()
	m.failures[kind]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) GetStarted() int64       { return m.started.Load() }
func (m *InMemoryMetrics) GetSucceeded() int64     { return m.succeeded.Load() }
func (m *InMemoryMetrics) GetFailed() int64        { return m.failed.Load() }
func (m *InMemoryMetrics) GetRetried() int64       { return m.retried.Load() }
func (m *InMemoryMetrics) GetResponseBytes() int64 { return m.responseBytes.Load() }

// GetMaxInFlight is the largest number of concurrently running attempts seen.
func (m *InMemoryMetrics) GetMaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// GetFailures returns failure counts by error kind.
func (m *InMemoryMetrics) GetFailures() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.failures))
	for k, v := range m.failures {
		out[k] = v
	}
	return out
}

// Multi fans every event out to several collectors.
type Multi []MetricsCollector

func (m Multi) AttemptStarted() {
	for _, c := range m {
		c.AttemptStarted()
	}
}

func (m Multi) AttemptFinished() {
	for _, c := range m {
		c.AttemptFinished()
	}
}

func (m Multi) Retried() {
	for _, c := range m {
		c.Retried()
	}
}

func (m Multi) Succeeded(bytes int, latency time.Duration) {
	for _, c := range m {
		c.Succeeded(bytes, latency)
	}
}

func (m Multi) Failed(kind string, latency time.Duration) {
	for _, c := range m {
		c.Failed(kind, latency)
	}
}
