package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/interviewer/pkg/proxy/types"
)

func TestWriteErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		errResp    *types.ErrorResponse
		wantStatus int
	}{
		{"invalid request", types.NewInvalidRequestError("bad", "messages", types.CodeInvalidJSON), http.StatusBadRequest},
		{"method not allowed", types.NewMethodNotAllowedError(http.MethodPost), http.StatusMethodNotAllowed},
		{"bad gateway", types.NewBadGatewayError("upstream"), http.StatusBadGateway},
		{"server error", types.NewServerError("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := WriteErrorResponse(w, tt.errResp); err != nil {
				t.Fatalf("WriteErrorResponse: %v", err)
			}

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var body types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body.Error.Message != tt.errResp.Error.Message || body.Error.Type != tt.errResp.Error.Type {
				t.Errorf("body = %+v, want %+v", body.Error, tt.errResp.Error)
			}
		})
	}
}

func TestSSEWriter_Events(t *testing.T) {
	w := httptest.NewRecorder()
	sse := NewSSEWriter(w)

	if err := sse.WriteContent("Hel"); err != nil {
		t.Fatal(err)
	}
	if err := sse.WriteContent(`lo "world"`); err != nil {
		t.Fatal(err)
	}
	if err := sse.WriteError("An error occurred"); err != nil {
		t.Fatal(err)
	}
	if err := sse.WriteDone(); err != nil {
		t.Fatal(err)
	}

	want := "data: {\"content\":\"Hel\"}\n\n" +
		"data: {\"content\":\"lo \\\"world\\\"\"}\n\n" +
		"data: {\"error\":\"An error occurred\"}\n\n" +
		"data: [DONE]\n\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body =\n%q\nwant\n%q", got, want)
	}
	if !w.Flushed {
		t.Error("expected response to be flushed")
	}
}

func TestSSEWriter_Headers(t *testing.T) {
	w := httptest.NewRecorder()
	if err := NewSSEWriter(w).Start(); err != nil {
		t.Fatal(err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	for header, want := range map[string]string{
		"Content-Type":  "text/event-stream",
		"Cache-Control": "no-cache",
		"Connection":    "keep-alive",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

// failingWriter simulates a client that has gone away.
type failingWriter struct {
	header http.Header
}

func (f *failingWriter) Header() http.Header { return f.header }
func (f *failingWriter) WriteHeader(int) {}
func (f *failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestSSEWriter_WriteFailure(t *testing.T) {
	sse := NewSSEWriter(&failingWriter{header: http.Header{}})
	if err := sse.WriteContent("x"); err == nil {
		t.Fatal("expected write error")
	}
}

func TestSSEWriter_DoesNotEscapeHTML(t *testing.T) {
	w := httptest.NewRecorder()
	if err := NewSSEWriter(w).WriteContent("if a < b && c > d {}"); err != nil {
		t.Fatal(err)
	}

	want := "data: {\"content\":\"if a < b && c > d {}\"}\n\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}
