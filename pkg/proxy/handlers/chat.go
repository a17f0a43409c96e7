package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"mercator-hq/interviewer/pkg/proxy"
	"mercator-hq/interviewer/pkg/proxy/middleware"
	"mercator-hq/interviewer/pkg/proxy/types"
	"mercator-hq/interviewer/pkg/relay"
)

// Streamer relays a transcript to the client. *relay.Relay implements it.
type Streamer interface {
	Stream(ctx context.Context, requestID string, turns []types.Turn, w relay.EventWriter) relay.Result
}

// ChatHandler serves GET /chat.
type ChatHandler struct {
	streamer Streamer
	maxTurns int
}

// NewChatHandler creates a chat handler. maxTurns caps the transcript
// length; zero means unlimited.
func NewChatHandler(streamer Streamer, maxTurns int) *ChatHandler {
	return &ChatHandler{streamer: streamer, maxTurns: maxTurns}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		if err := proxy.WriteErrorResponse(w, types.NewMethodNotAllowedError(r.Method)); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	turns, err := proxy.ParseTranscriptQuery(r, h.maxTurns)
	if err != nil {
		slog.WarnContext(ctx, "rejected relay request", "error", err)
		if err := proxy.WriteErrorResponse(w, proxy.HandleError(err)); err != nil {
			slog.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	sse := proxy.NewSSEWriter(w)
	if err := sse.Start(); err != nil {
		slog.WarnContext(ctx, "failed to open event stream", "error", err)
		return
	}

	h.streamer.Stream(ctx, middleware.GetRequestID(ctx), turns, sse)
}
