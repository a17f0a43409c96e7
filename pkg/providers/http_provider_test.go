package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*HTTPProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewHTTPProvider(ProviderConfig{
		Name:    "test",
		Type:    TypeOpenAI,
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	})
	t.Cleanup(func() { p.Close() })
	return p, server
}

func TestDoRequest_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{"forbidden", http.StatusForbidden, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{"rate limited", http.StatusTooManyRequests, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) }},
		{"bad request", http.StatusBadRequest, func(err error) bool {
			var e *ProviderError
			return errors.As(err, &e) && e.StatusCode == http.StatusBadRequest
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var e *ProviderError
			return errors.As(err, &e) && e.StatusCode == http.StatusInternalServerError
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "7")
				http.Error(w, `{"error":"nope"}`, tt.status)
			})

			resp, err := p.DoRequest(context.Background(), http.MethodPost, server.URL, []byte(`{}`), nil)
			if resp != nil {
				t.Fatal("expected nil response on error status")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
		})
	}
}

func TestDoRequest_RateLimitRetryAfter(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil)

	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", rl.RetryAfter)
	}
}

func TestDoRequest_NoRetry(t *testing.T) {
	var calls atomic.Int32
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := p.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestDoRequest_SetsHeaders(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "secret" {
			t.Errorf("api-key = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		fmt.Fprint(w, string(body))
	})

	resp, err := p.DoRequest(context.Background(), http.MethodPost, server.URL, []byte(`{"a":1}`),
		map[string]string{"api-key": "secret"})
	if err != nil {
		t.Fatalf("DoRequest: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"a":1}` {
		t.Errorf("echoed body = %q", body)
	}
}

func TestDoRequest_ResponseHeaderTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	p := NewHTTPProvider(ProviderConfig{Name: "slow", Timeout: 50 * time.Millisecond})
	defer p.Close()

	_, err := p.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil)

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
}

func TestDoRequest_ContextCanceled(t *testing.T) {
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.DoRequest(ctx, http.MethodGet, server.URL, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !p.IsHealthy() {
		t.Error("cancellation must not affect provider health")
	}
}

func TestHealth_UnhealthyAfterConsecutiveFailures(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	p, server := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < unhealthyThreshold; i++ {
		if !p.IsHealthy() {
			t.Fatalf("unhealthy after %d failures", i)
		}
		p.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil)
	}

	if p.IsHealthy() {
		t.Fatal("expected unhealthy after threshold")
	}
	health := p.GetHealth()
	if health.FailedRequests != int64(unhealthyThreshold) {
		t.Errorf("FailedRequests = %d", health.FailedRequests)
	}

	fail.Store(false)
	resp, err := p.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatalf("DoRequest: %v", err)
	}
	resp.Body.Close()

	if !p.IsHealthy() {
		t.Error("expected healthy after a success")
	}
}

func TestHealthCheck_UsesProbe(t *testing.T) {
	p := NewHTTPProvider(ProviderConfig{Name: "probe"})
	defer p.Close()

	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("passive health check: %v", err)
	}

	want := errors.New("down")
	p.SetHealthProbe(func(ctx context.Context) error { return want })
	if err := p.HealthCheck(context.Background()); !errors.Is(err, want) {
		t.Errorf("HealthCheck = %v, want %v", err, want)
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 10 * time.Second
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, base},
		{1, 20 * time.Second},
		{2, 40 * time.Second},
		{3, 80 * time.Second},
		{4, 100 * time.Second},
		{50, 100 * time.Second},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.failures, base); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}

	if got := calculateBackoff(5, time.Minute); got != maxHealthCheckBackoff {
		t.Errorf("backoff not capped: %v", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("empty header = %v", got)
	}
	if got := parseRetryAfter("30"); got != 30*time.Second {
		t.Errorf("seconds = %v", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("garbage = %v", got)
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Hour {
		t.Errorf("http date = %v", got)
	}
}
