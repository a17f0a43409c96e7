// Package tracing wires OpenTelemetry tracing for the relay.
//
// Each relay request produces one "relay.stream" span carrying the request
// ID, model, turn count, fragment counts and outcome. Spans are exported
// either as pretty-printed JSON (stdouttrace) to stdout or a rotating file,
// or over OTLP/gRPC to a collector.
//
// When tracing is disabled New returns a no-op tracer, so instrumented code
// never checks whether tracing is on.
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "relay.stream")
//	defer span.End()
//
// # Sampling
//
// All samplers are wrapped in ParentBased so an incoming traceparent header
// decides for the whole trace:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
package tracing
