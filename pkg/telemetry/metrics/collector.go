package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mercator-hq/interviewer/pkg/config"
)

// Outcome labels for relay streams.
const (
	OutcomeCompleted          = "completed"
	OutcomeProviderError      = "provider_error"
	OutcomeClientDisconnected = "client_disconnected"
)

// Collector records relay, provider and HTTP metrics.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	relay    *RelayMetrics
	provider *ProviderMetrics
	http     *HTTPMetrics
}

// NewCollector creates a collector and registers its metrics. If registry is
// nil a fresh one is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	c := &Collector{
		enabled:  cfg.IsEnabled(),
		registry: registry,
	}
	if !c.enabled {
		return c
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.relay = NewRelayMetrics(cfg, registry)
	c.provider = NewProviderMetrics(cfg, registry)
	c.http = NewHTTPMetrics(cfg, registry)

	return c
}

// Enabled reports whether metrics are being recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StreamStarted marks a relay stream as in flight.
func (c *Collector) StreamStarted() {
	if !c.Enabled() {
		return
	}
	c.relay.activeStreams.Inc()
}

// StreamFinished records a completed relay stream and clears it from the
// in-flight gauge.
func (c *Collector) StreamFinished(outcome string, duration time.Duration, fragments, skipped int) {
	if !c.Enabled() {
		return
	}
	c.relay.activeStreams.Dec()
	c.relay.requestsTotal.WithLabelValues(outcome).Inc()
	c.relay.duration.Observe(duration.Seconds())
	if fragments > 0 {
		c.relay.fragmentsTotal.Add(float64(fragments))
	}
	if skipped > 0 {
		c.relay.skippedTotal.Add(float64(skipped))
	}
}

// FirstFragment records the delay before the first content event.
func (c *Collector) FirstFragment(latency time.Duration) {
	if !c.Enabled() {
		return
	}
	c.relay.firstFragment.Observe(latency.Seconds())
}

// RecordProviderError counts a provider failure by kind
// (see providers.ErrorKind).
func (c *Collector) RecordProviderError(kind string) {
	if !c.Enabled() {
		return
	}
	c.provider.errorsTotal.WithLabelValues(kind).Inc()
}

// UpdateProviderHealth sets the provider health gauge.
func (c *Collector) UpdateProviderHealth(healthy bool) {
	if !c.Enabled() {
		return
	}
	if healthy {
		c.provider.healthy.Set(1)
	} else {
		c.provider.healthy.Set(0)
	}
}

// RecordHTTPRequest counts an HTTP response. path must come from a bounded
// set; see the metrics middleware.
func (c *Collector) RecordHTTPRequest(path string, status int) {
	if !c.Enabled() {
		return
	}
	c.http.requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
