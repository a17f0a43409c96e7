package providerfactory

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/interviewer/pkg/providers"
	"mercator-hq/interviewer/pkg/telemetry/metrics"
)

// DefaultMonitorInterval is used when NewHealthMonitor gets no interval.
const DefaultMonitorInterval = 10 * time.Second

// HealthMonitor publishes the provider's recorded health to the
// provider_healthy gauge and logs transitions.
type HealthMonitor struct {
	provider providers.Provider
	metrics  *metrics.Collector
	interval time.Duration
	last     *bool
}

// NewHealthMonitor creates a monitor sampling provider every interval.
func NewHealthMonitor(provider providers.Provider, collector *metrics.Collector, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &HealthMonitor{provider: provider, metrics: collector, interval: interval}
}

// Run samples until ctx is done. It always returns nil so it can run in an
// errgroup next to the server.
func (m *HealthMonitor) Run(ctx context.Context) error {
	m.Sample()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sample()
		}
	}
}

// Sample publishes the current health once.
func (m *HealthMonitor) Sample() {
	healthy := m.provider.IsHealthy()
	m.metrics.UpdateProviderHealth(healthy)

	if m.last != nil && *m.last != healthy {
		h := m.provider.GetHealth()
		if healthy {
			slog.Info("provider recovered", "provider", m.provider.GetName())
		} else {
			slog.Warn("provider became unhealthy",
				"provider", m.provider.GetName(),
				"consecutive_failures", h.ConsecutiveFailures,
				"error", h.LastError,
			)
		}
	}
	m.last = &healthy
}
