// Package telemetry bundles the relay's observability: structured logging,
// Prometheus metrics, OpenTelemetry tracing and health endpoints.
//
//	tel, err := telemetry.New(cfg.Telemetry, version)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	slog.Info("relay listening") // goes through tel.Logger
//	tel.Metrics.StreamStarted()
//	ctx, span := tel.Tracer.Start(ctx, "relay.stream")
//
// The subpackages can also be used on their own.
package telemetry
