package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// unhealthyThreshold is the number of consecutive failures after which a
// provider reports itself unhealthy.
const unhealthyThreshold = 3

// maxErrorBody caps how much of a non-2xx body is kept in error messages.
const maxErrorBody = 4 << 10

// HTTPProvider is the base implementation for HTTP-based provider adapters.
// It owns the pooled transport, maps error statuses to typed errors and
// tracks request health.
//
// Adapters embed it and supply a health probe through SetHealthProbe.
type HTTPProvider struct {
	config ProviderConfig
	client *http.Client

	health   ProviderHealth
	healthMu sync.RWMutex

	probe func(ctx context.Context) error

	stopHealthCheck    chan struct{}
	healthCheckStopped chan struct{}
	checkerStarted     bool
	closeOnce          sync.Once
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
//
// The configured Timeout is applied to response headers only. An
// http.Client timeout would also cover the body and cut off long streams.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ResponseHeaderTimeout: config.Timeout,
		ForceAttemptHTTP2:     true,
	}

	now := time.Now()
	return &HTTPProvider{
		config: config,
		client: &http.Client{Transport: transport},
		health: ProviderHealth{
			IsHealthy:             true,
			LastCheck:             now,
			LastSuccessfulRequest: now,
		},
		stopHealthCheck:    make(chan struct{}),
		healthCheckStopped: make(chan struct{}),
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// SetHealthProbe installs the adapter-specific health check.
func (p *HTTPProvider) SetHealthProbe(probe func(ctx context.Context) error) {
	p.probe = probe
}

// IsHealthy returns the current health status.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns detailed health information.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// RecordFailure counts a failure that happened after DoRequest returned,
// such as a stream that broke mid-body.
func (p *HTTPProvider) RecordFailure(err error) {
	p.recordRequest(false)
	p.updateHealth(false, err)
}

func (p *HTTPProvider) updateHealth(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.LastCheck = time.Now()

	if success {
		if !p.health.IsHealthy {
			slog.Info("provider marked healthy",
				"provider", p.config.Name,
				"previous_failures", p.health.ConsecutiveFailures,
			)
		}
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = p.health.LastCheck
		return
	}

	p.health.ConsecutiveFailures++
	p.health.LastError = err

	if p.health.ConsecutiveFailures >= unhealthyThreshold && p.health.IsHealthy {
		p.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", p.config.Name,
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

func (p *HTTPProvider) recordRequest(success bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	if !success {
		p.health.FailedRequests++
	}
}

// DoRequest performs a single HTTP request and maps error statuses to typed
// errors. On success the caller owns resp.Body.
//
// There is no retry: a transient failure is returned to the caller as is.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "sending request to provider",
		"provider", p.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// The caller went away; this says nothing about the provider.
			return nil, ctx.Err()
		}

		var mapped error = &ProviderError{
			Provider: p.config.Name,
			Message:  "request failed",
			Cause:    err,
		}
		if isTimeout(err) {
			mapped = &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
		}
		p.RecordFailure(mapped)
		return nil, mapped
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.recordRequest(true)
		p.updateHealth(true, nil)
		return resp, nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	var mapped error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		mapped = &AuthError{
			Provider: p.config.Name,
			Message:  string(errorBody),
		}
	case http.StatusTooManyRequests:
		mapped = &RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    string(errorBody),
		}
	default:
		mapped = &ProviderError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Message:    string(errorBody),
		}
	}

	// Client-side rejections do not count against provider health.
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		p.RecordFailure(mapped)
	} else {
		p.recordRequest(false)
	}

	slog.WarnContext(ctx, "provider returned error status",
		"provider", p.config.Name,
		"status", resp.StatusCode,
	)
	return nil, mapped
}

// Close stops the health checker and closes idle connections.
func (p *HTTPProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.stopHealthCheck)

		if p.checkerStarted {
			select {
			case <-p.healthCheckStopped:
				slog.Debug("health checker stopped", "provider", p.config.Name)
			case <-time.After(5 * time.Second):
				slog.Warn("health checker did not stop in time", "provider", p.config.Name)
			}
		}

		p.client.CloseIdleConnections()
		slog.Info("provider closed", "provider", p.config.Name)
	})
	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
