package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/interviewer/pkg/proxy"
	"mercator-hq/interviewer/pkg/proxy/types"
)

// RecoveryMiddleware turns a handler panic into a JSON 500 and logs the
// stack. If the handler had already started the response, the connection is
// left to be closed by the server.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			if rw.written {
				return
			}
			errResp := types.NewServerError("An internal error occurred. Please try again later.")
			_ = proxy.WriteErrorResponse(rw, errResp)
		}()

		next.ServeHTTP(rw, r)
	})
}
