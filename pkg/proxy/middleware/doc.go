// Package middleware provides the HTTP middleware of the relay server.
//
// The server chains them as
//
//	Recovery(Tracing(RequestID(Logging(Metrics(CORS(mux))))))
//
// so a panic anywhere becomes a JSON 500, every log line carries the request
// ID and trace ID, and CORS preflights are answered before routing.
//
// Wrapped response writers implement Unwrap so http.ResponseController can
// flush server-sent events through the chain.
package middleware
