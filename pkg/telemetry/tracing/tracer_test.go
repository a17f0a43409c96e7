package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/interviewer/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "relay.stream")
	if span.IsRecording() {
		t.Error("disabled tracer must not record")
	}
	span.End()
	if TraceID(ctx) != "" {
		t.Error("expected no trace ID from a no-op span")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNew_UnsupportedExporter(t *testing.T) {
	_, err := New(config.TracingConfig{Enabled: true, Exporter: "zipkin"}, "test")
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}

func TestNew_StdoutExporterToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.json")

	tracer, err := New(config.TracingConfig{
		Enabled:  true,
		Exporter: "stdout",
		File:     path,
		Sampler:  SamplerAlways,
	}, "1.2.3")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, span := tracer.Start(context.Background(), "relay.stream")
	span.SetAttributes(AttrTurns.Int(2))
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace file: %v", err)
	}
	if !strings.Contains(string(data), `"relay.stream"`) {
		t.Errorf("trace file missing span: %s", data)
	}
}

func TestNewWithExporter_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(config.TracingConfig{Sampler: SamplerAlways}, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter: %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "relay.stream")
	span.SetAttributes(AttrOutcome.String("completed"))
	if TraceID(ctx) == "" {
		t.Error("expected trace ID on recording span")
	}
	SetStatus(span, nil)
	span.End()

	_, failed := tracer.Start(context.Background(), "relay.stream")
	SetStatus(failed, errors.New("provider unavailable"))
	failed.End()

	if err := tracer.provider.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected ok status, got %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error || len(spans[1].Events) == 0 {
		t.Errorf("expected error status with recorded event, got %+v", spans[1].Status)
	}
}

func TestNewWithExporter_NeverSampler(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(config.TracingConfig{Sampler: SamplerNever}, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter: %v", err)
	}

	_, span := tracer.Start(context.Background(), "relay.stream")
	span.End()
	_ = tracer.provider.ForceFlush(context.Background())

	if got := len(exporter.GetSpans()); got != 0 {
		t.Errorf("expected no sampled spans, got %d", got)
	}
}

func TestNewWithExporter_Errors(t *testing.T) {
	if _, err := NewWithExporter(config.TracingConfig{}, "test", nil); err == nil {
		t.Error("expected error for nil exporter")
	}
	if _, err := NewWithExporter(config.TracingConfig{Sampler: "sometimes"}, "test", tracetest.NewInMemoryExporter()); err == nil {
		t.Error("expected error for unknown sampler")
	}
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	_, span := tracer.Start(context.Background(), "relay.stream")
	span.End()
	if tracer.Enabled() {
		t.Error("nil tracer must report disabled")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.25, false},
		{SamplerRatio, 1.5, true},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		_, err := createSampler(tt.strategy, tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
		}
	}
}

func TestHTTPMiddleware_ExtractsTraceParent(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	var seen string
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != traceID {
		t.Errorf("expected trace ID %s in handler context, got %q", traceID, seen)
	}
	if got := rec.Header().Get("X-Trace-ID"); got != traceID {
		t.Errorf("expected X-Trace-ID %s, got %q", traceID, got)
	}

	headers := http.Header{}
	Inject(remoteContext(t, traceID), headers)
	if !strings.Contains(headers.Get("traceparent"), traceID) {
		t.Errorf("expected injected traceparent, got %q", headers.Get("traceparent"))
	}
}

func remoteContext(t *testing.T, traceID string) context.Context {
	t.Helper()
	h := http.Header{}
	h.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	return Extract(context.Background(), h)
}
