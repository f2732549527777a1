package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

type ComponentStatus string

const (
	ComponentStatusUp       ComponentStatus = "up"
	ComponentStatusDown     ComponentStatus = "down"
	ComponentStatusDegraded ComponentStatus = "degraded"
)

// Check probes one dependency. A probe slower than Slow (default 1s) marks
// the component degraded.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
	Slow  time.Duration
}

type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
	Requests   MetricsSnapshot            `json:"requests"`
}

type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

const checkTimeout = 5 * time.Second

// HandleHealth reports component health: 200 when healthy or degraded, 503
// when any component is down.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())

	statusCode := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(health)
}

func (s *Server) checkHealth(ctx context.Context) Health {
	health := Health{
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]ComponentHealth, len(s.checks)),
		Requests:   s.metrics.Snapshot(),
	}
	for _, c := range s.checks {
		health.Components[c.Name] = runCheck(ctx, c)
	}
	health.Status = overallHealth(health.Components)
	return health
}

func runCheck(ctx context.Context, c Check) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	if err := c.Probe(ctx); err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: c.Name + " check failed: " + err.Error(),
		}
	}
	latency := time.Since(start)

	slow := c.Slow
	if slow <= 0 {
		slow = time.Second
	}
	if latency > slow {
		return ComponentHealth{
			Status:    ComponentStatusDegraded,
			Message:   c.Name + " latency high",
			LatencyMs: float64(latency.Milliseconds()),
		}
	}
	return ComponentHealth{
		Status:    ComponentStatusUp,
		LatencyMs: float64(latency.Milliseconds()),
	}
}

func overallHealth(components map[string]ComponentHealth) HealthStatus {
	var down, degraded int
	for _, c := range components {
		switch c.Status {
		case ComponentStatusDown:
			down++
		case ComponentStatusDegraded:
			degraded++
		}
	}

	if down > 0 {
		return HealthStatusUnhealthy
	}
	if degraded > 0 {
		return HealthStatusDegraded
	}
	return HealthStatusHealthy
}
