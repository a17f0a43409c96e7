package middleware

import (
	"net/http"

	"mercator-hq/interviewer/pkg/telemetry/metrics"
)

// otherPath is the metric label for paths outside the known routes.
const otherPath = "other"

// MetricsMiddleware counts responses by route and status. Only paths in
// routes are used as labels; everything else is counted as "other".
func MetricsMiddleware(c *metrics.Collector, routes ...string) func(http.Handler) http.Handler {
	known := make(map[string]bool, len(routes))
	for _, r := range routes {
		known[r] = true
	}

	return func(next http.Handler) http.Handler {
		if !c.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if !known[path] {
				path = otherPath
			}
			c.RecordHTTPRequest(path, rw.statusCode)
		})
	}
}
