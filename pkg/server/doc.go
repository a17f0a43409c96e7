// Package server wires the relay HTTP server: routes, middleware chain and
// lifecycle.
//
// Routes:
//
//	GET /chat      relay event stream
//	GET /health    liveness
//	GET /ready     readiness (provider health)
//	GET /version   build information
//	GET /metrics   Prometheus metrics
//	/              static browser bundle, when server.static_dir is set
//
// Probe and metrics paths come from the telemetry configuration.
//
// Usage:
//
//	srv := server.NewServer(cfg, relay, tel, server.BuildInfo{Version: version})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then shuts down gracefully within
// server.shutdown_timeout. The server sets no write timeout by default because
// relay responses are long-lived event streams.
package server
