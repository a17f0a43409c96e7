package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mercator-hq/interviewer/pkg/config"
	"mercator-hq/interviewer/pkg/telemetry/health"
	"mercator-hq/interviewer/pkg/telemetry/logging"
	"mercator-hq/interviewer/pkg/telemetry/metrics"
	"mercator-hq/interviewer/pkg/telemetry/tracing"
)

// Telemetry holds the process-wide observability components.
type Telemetry struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Health  *health.Checker
}

// New builds all components from cfg and installs the logger as the slog
// default.
func New(cfg config.TelemetryConfig, version string) (*Telemetry, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	slog.SetDefault(logger.Logger)

	tracer, err := tracing.New(cfg.Tracing, version)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("tracing: %w", err)
	}

	return &Telemetry{
		Logger:  logger,
		Metrics: metrics.NewCollector(cfg.Metrics, nil),
		Tracer:  tracer,
		Health:  health.New(cfg.Health.CheckTimeout),
	}, nil
}

// Apply updates the settings that can change at runtime: the log level.
func (t *Telemetry) Apply(cfg config.TelemetryConfig) {
	if err := t.Logger.SetLevel(cfg.Logging.Level); err != nil {
		slog.Warn("ignoring log level change", "level", cfg.Logging.Level, "error", err)
		return
	}
	slog.Info("log level applied", "level", t.Logger.Level().String())
}

// Shutdown flushes spans and closes the log file.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.Tracer.Shutdown(ctx), t.Logger.Close())
}
