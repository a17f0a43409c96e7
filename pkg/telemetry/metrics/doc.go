// Package metrics exposes relay metrics in the Prometheus format.
//
// All metrics live in a dedicated registry owned by the Collector, next to
// the Go runtime and process collectors, and are served by Handler.
//
// Metrics:
//
//	interviewer_relay_requests_total{outcome}    relay streams by outcome
//	interviewer_relay_fragments_total            content events forwarded
//	interviewer_relay_skipped_fragments_total    empty fragments dropped
//	interviewer_relay_duration_seconds           stream duration
//	interviewer_relay_first_fragment_seconds     time to first content event
//	interviewer_relay_active_streams             streams in flight
//	interviewer_provider_errors_total{type}      provider failures by kind
//	interviewer_provider_healthy                 1 when the provider is healthy
//	interviewer_http_requests_total{path,status} HTTP responses
//
// A nil or disabled Collector accepts every call and records nothing, so
// callers never need to guard.
package metrics
