package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/interviewer/pkg/config"
)

func testConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Namespace:       "test",
		DurationBuckets: []float64{0.1, 1, 10},
	}
}

func TestCollector_StreamLifecycle(t *testing.T) {
	c := NewCollector(testConfig(), prometheus.NewRegistry())

	c.StreamStarted()
	c.StreamStarted()
	if got := testutil.ToFloat64(c.relay.activeStreams); got != 2 {
		t.Fatalf("expected 2 active streams, got %v", got)
	}

	c.FirstFragment(120 * time.Millisecond)
	c.StreamFinished(OutcomeCompleted, 2*time.Second, 5, 2)
	c.StreamFinished(OutcomeProviderError, 100*time.Millisecond, 0, 0)

	if got := testutil.ToFloat64(c.relay.activeStreams); got != 0 {
		t.Errorf("expected 0 active streams, got %v", got)
	}
	if got := testutil.ToFloat64(c.relay.requestsTotal.WithLabelValues(OutcomeCompleted)); got != 1 {
		t.Errorf("expected 1 completed, got %v", got)
	}
	if got := testutil.ToFloat64(c.relay.requestsTotal.WithLabelValues(OutcomeProviderError)); got != 1 {
		t.Errorf("expected 1 provider_error, got %v", got)
	}
	if got := testutil.ToFloat64(c.relay.fragmentsTotal); got != 5 {
		t.Errorf("expected 5 fragments, got %v", got)
	}
	if got := testutil.ToFloat64(c.relay.skippedTotal); got != 2 {
		t.Errorf("expected 2 skipped, got %v", got)
	}
	if got := testutil.CollectAndCount(c.relay.duration); got != 1 {
		t.Errorf("expected one duration histogram, got %d", got)
	}
}

func TestCollector_ProviderMetrics(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	if got := testutil.ToFloat64(c.provider.healthy); got != 1 {
		t.Errorf("provider should start healthy, got %v", got)
	}

	c.UpdateProviderHealth(false)
	if got := testutil.ToFloat64(c.provider.healthy); got != 0 {
		t.Errorf("expected unhealthy, got %v", got)
	}

	c.RecordProviderError("rate_limit")
	c.RecordProviderError("rate_limit")
	c.RecordProviderError("auth")
	if got := testutil.ToFloat64(c.provider.errorsTotal.WithLabelValues("rate_limit")); got != 2 {
		t.Errorf("expected 2 rate_limit errors, got %v", got)
	}
}

func TestCollector_HTTPMetrics(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordHTTPRequest("/chat", 200)
	c.RecordHTTPRequest("/chat", 400)
	c.RecordHTTPRequest("/chat", 200)

	if got := testutil.ToFloat64(c.http.requestsTotal.WithLabelValues("/chat", "200")); got != 2 {
		t.Errorf("expected 2 ok responses, got %v", got)
	}
}

func TestCollector_DisabledAndNil(t *testing.T) {
	disabled := false
	cfg := testConfig()
	cfg.Enabled = &disabled

	for name, c := range map[string]*Collector{
		"disabled": NewCollector(cfg, nil),
		"nil":      nil,
	} {
		t.Run(name, func(t *testing.T) {
			if c.Enabled() {
				t.Fatal("expected collector to be disabled")
			}
			// None of these may panic.
			c.StreamStarted()
			c.StreamFinished(OutcomeCompleted, time.Second, 1, 0)
			c.FirstFragment(time.Millisecond)
			c.RecordProviderError("auth")
			c.UpdateProviderHealth(true)
			c.RecordHTTPRequest("/chat", 200)

			rec := httptest.NewRecorder()
			c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404 from disabled handler, got %d", rec.Code)
			}
		})
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(config.MetricsConfig{}, nil)
	c.StreamStarted()
	c.StreamFinished(OutcomeClientDisconnected, time.Second, 1, 0)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`interviewer_relay_requests_total{outcome="client_disconnected"} 1`,
		"interviewer_relay_active_streams 0",
		"interviewer_provider_healthy 1",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
