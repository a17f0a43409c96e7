package providers

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultHealthCheckInterval = 30 * time.Second
	healthCheckTimeout         = 5 * time.Second
	maxHealthCheckBackoff      = 5 * time.Minute
)

// StartHealthChecker starts a background goroutine that periodically probes
// the provider. It runs until the provider is closed or ctx is cancelled.
// While the provider is unhealthy the interval backs off exponentially.
func (p *HTTPProvider) StartHealthChecker(ctx context.Context) {
	if p.probe == nil {
		return
	}
	p.checkerStarted = true
	go p.runHealthChecker(ctx)
}

func (p *HTTPProvider) runHealthChecker(ctx context.Context) {
	defer close(p.healthCheckStopped)

	interval := p.config.HealthCheckInterval
	if interval <= 0 {
		interval = defaultHealthCheckInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("health checker started",
		"provider", p.config.Name,
		"interval", interval,
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopHealthCheck:
			return
		case <-ticker.C:
			p.performHealthCheck(ctx)

			next := interval
			if health := p.GetHealth(); !health.IsHealthy {
				next = calculateBackoff(health.ConsecutiveFailures, interval)
				slog.Debug("health check backoff",
					"provider", p.config.Name,
					"consecutive_failures", health.ConsecutiveFailures,
					"next_check_in", next,
				)
			}
			ticker.Reset(next)
		}
	}
}

func (p *HTTPProvider) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := p.HealthCheck(checkCtx)
	latency := time.Since(start)

	if err != nil {
		p.updateHealth(false, err)
		slog.Error("health check failed",
			"provider", p.config.Name,
			"error", err,
			"latency", latency,
		)
		return
	}

	p.updateHealth(true, nil)
	slog.Debug("health check passed",
		"provider", p.config.Name,
		"latency", latency,
	)
}

// calculateBackoff returns base * 2^failures, capped at 10x the base and at
// five minutes.
func calculateBackoff(consecutiveFailures int, baseInterval time.Duration) time.Duration {
	if consecutiveFailures <= 0 {
		return baseInterval
	}

	multiplier := 10
	if consecutiveFailures < 4 {
		multiplier = 1 << uint(consecutiveFailures)
	}

	backoff := baseInterval * time.Duration(multiplier)
	if backoff > maxHealthCheckBackoff {
		backoff = maxHealthCheckBackoff
	}
	return backoff
}

// HealthCheck runs the adapter's probe once. Without a probe the provider
// reports its passive request health.
func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	if p.probe == nil {
		if health := p.GetHealth(); !health.IsHealthy {
			return health.LastError
		}
		return nil
	}
	return p.probe(ctx)
}
