package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/interviewer/pkg/config"
)

// ProviderMetrics tracks completion provider health and failures.
type ProviderMetrics struct {
	errorsTotal *prometheus.CounterVec
	healthy     prometheus.Gauge
}

// NewProviderMetrics creates and registers provider metrics.
func NewProviderMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "provider",
				Name:      "errors_total",
				Help:      "Total number of provider failures by type",
			},
			[]string{"type"},
		),

		healthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "provider",
			Name:      "healthy",
			Help:      "Provider health status (1=healthy, 0=unhealthy)",
		}),
	}

	registry.MustRegister(pm.errorsTotal, pm.healthy)
	pm.healthy.Set(1)

	return pm
}
