package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for gateway calls.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	totalDuration time.Duration
}

// Counter is one row of a metrics snapshot.
type Counter struct {
	Key   string
	Count int64
}

// Snapshot is a point-in-time copy of the counters, sorted by key.
type Snapshot struct {
	Requests      []Counter
	Errors        []Counter
	TotalDuration time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest counts a completed response.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalDuration += duration
}

// RecordError counts a failed call by error kind.
func (m *Metrics) RecordError(path, method, kind string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, kind)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests:      sortedCounters(m.requestCount),
		Errors:        sortedCounters(m.errorCount),
		TotalDuration: m.totalDuration,
	}
}

func sortedCounters(src map[string]int64) []Counter {
	out := make([]Counter, 0, len(src))
	for k, v := range src {
		out = append(out, Counter{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func pathKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}
