// Package relay streams a chat completion from a provider to one client.
//
// A relay request carries the client's transcript. The relay prepends the
// persona system turn, opens a provider stream bound to the request context
// and re-publishes every non-empty fragment as a content event. Every stream
// the client is still attached to ends with exactly one [DONE] sentinel; a
// provider failure is reported first as a single generic error event.
//
// The relay writes through an EventWriter so it can be exercised without an
// HTTP server. pkg/proxy provides the server-sent events implementation.
package relay
