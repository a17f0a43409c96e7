package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/interviewer/pkg/proxy/types"
)

// WriteJSONResponse writes data as a JSON response with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes errResp with the status implied by its type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}

// SetSSEHeaders sets the headers of an event stream response.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// SSEWriter writes relay events as server-sent events, flushing after each
// event. The first write commits a 200 response with the stream headers.
type SSEWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

// NewSSEWriter wraps w.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	return &SSEWriter{w: w, rc: http.NewResponseController(w)}
}

// Start commits the response headers. It is called implicitly by the first
// write.
func (s *SSEWriter) Start() error {
	if s.started {
		return nil
	}
	s.started = true
	SetSSEHeaders(s.w)
	s.w.WriteHeader(http.StatusOK)
	return s.flush()
}

// WriteContent writes a {"content": text} event.
func (s *SSEWriter) WriteContent(text string) error {
	return s.writeJSON(types.ContentEvent{Content: text})
}

// WriteError writes an {"error": message} event.
func (s *SSEWriter) WriteError(message string) error {
	return s.writeJSON(types.ErrorEvent{Error: message})
}

// WriteDone writes the [DONE] sentinel.
func (s *SSEWriter) WriteDone() error {
	return s.writeData([]byte(types.DoneSentinel))
}

func (s *SSEWriter) writeJSON(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal SSE event: %w", err)
	}
	return s.writeData(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func (s *SSEWriter) writeData(data []byte) error {
	if err := s.Start(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}
	return s.flush()
}

func (s *SSEWriter) flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("failed to flush SSE event: %w", err)
	}
	return nil
}
