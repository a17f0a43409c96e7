// Package proxy contains the HTTP plumbing of the chat relay: parsing the
// transcript carried in the query string, writing server-sent events and
// mapping errors to JSON error bodies.
//
// # Wire format
//
// GET /chat?messages=<url-encoded JSON array of {role, content}> answers with
// Content-Type text/event-stream and a sequence of events:
//
//	data: {"content":"Hel"}
//
//	data: {"content":"lo!"}
//
//	data: [DONE]
//
// A provider failure is reported as data: {"error":"An error occurred"}
// followed by the sentinel. A malformed transcript is rejected with 400 and
// a JSON error body before any event is written.
//
// Handlers live in pkg/proxy/handlers, cross-cutting concerns in
// pkg/proxy/middleware and wire types in pkg/proxy/types.
package proxy
