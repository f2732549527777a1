package server

import (
	"sync"
	"time"
)

// Metrics counts served requests by outcome. It is reported under
// "requests" in the /health response.
type Metrics struct {
	mu sync.RWMutex

	started          time.Time
	requestsTotal    int64
	requestErrors4xx int64
	requestErrors5xx int64
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++

	if statusCode >= 500 {
		m.requestErrors5xx++
	} else if statusCode >= 400 {
		m.requestErrors4xx++
	}
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var uptime int64
	if !m.started.IsZero() {
		uptime = int64(time.Since(m.started).Seconds())
	}
	return MetricsSnapshot{
		UptimeSeconds:    uptime,
		RequestsTotal:    m.requestsTotal,
		RequestErrors4xx: m.requestErrors4xx,
		RequestErrors5xx: m.requestErrors5xx,
	}
}

type MetricsSnapshot struct {
	UptimeSeconds    int64 `json:"uptime_seconds"`
	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors4xx int64 `json:"request_errors_4xx"`
	RequestErrors5xx int64 `json:"request_errors_5xx"`
}
