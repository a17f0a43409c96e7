// Package handlers provides the HTTP handler for the relay endpoint.
//
// GET /chat parses the transcript from the messages query parameter,
// rejects malformed input with a 400 JSON error body and otherwise opens an
// event stream and hands it to the relay. Other methods get 405.
//
// Health, readiness and version endpoints live in pkg/telemetry/health.
package handlers
