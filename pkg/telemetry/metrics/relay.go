package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/interviewer/pkg/config"
)

// RelayMetrics tracks relay streams.
type RelayMetrics struct {
	requestsTotal  *prometheus.CounterVec
	fragmentsTotal prometheus.Counter
	skippedTotal   prometheus.Counter
	duration       prometheus.Histogram
	firstFragment  prometheus.Histogram
	activeStreams  prometheus.Gauge
}

// NewRelayMetrics creates and registers relay metrics.
func NewRelayMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	rm := &RelayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "relay",
				Name:      "requests_total",
				Help:      "Total number of relay streams by outcome",
			},
			[]string{"outcome"},
		),

		fragmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "relay",
			Name:      "fragments_total",
			Help:      "Total number of content events forwarded to clients",
		}),

		skippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "relay",
			Name:      "skipped_fragments_total",
			Help:      "Total number of empty provider fragments that were not forwarded",
		}),

		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "relay",
			Name:      "duration_seconds",
			Help:      "Duration of relay streams in seconds",
			Buckets:   cfg.DurationBuckets,
		}),

		firstFragment: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "relay",
			Name:      "first_fragment_seconds",
			Help:      "Time from request start to the first content event",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),

		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "relay",
			Name:      "active_streams",
			Help:      "Number of relay streams in flight",
		}),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.fragmentsTotal,
		rm.skippedTotal,
		rm.duration,
		rm.firstFragment,
		rm.activeStreams,
	)

	return rm
}
