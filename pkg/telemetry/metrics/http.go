package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/interviewer/pkg/config"
)

// HTTPMetrics tracks HTTP responses served by the relay.
type HTTPMetrics struct {
	requestsTotal *prometheus.CounterVec
}

// NewHTTPMetrics creates and registers HTTP metrics.
func NewHTTPMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP responses by path and status",
			},
			[]string{"path", "status"},
		),
	}

	registry.MustRegister(hm.requestsTotal)

	return hm
}
