package providertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// AzureServer is a fake Azure OpenAI chat completions endpoint.
type AzureServer struct {
	server *httptest.Server

	mu         sync.Mutex
	deployment string
	apiKey     string
	fragments  []string
	status     int
	bodies     [][]byte
}

// NewAzureServer starts a server that streams fragments for deployment and
// accepts apiKey.
func NewAzureServer(deployment, apiKey string, fragments ...string) *AzureServer {
	s := &AzureServer{
		deployment: deployment,
		apiKey:     apiKey,
		fragments:  fragments,
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the resource endpoint.
func (s *AzureServer) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *AzureServer) Close() {
	s.server.Close()
}

// FailWith makes subsequent completions return status.
func (s *AzureServer) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Bodies returns the raw request bodies received.
func (s *AzureServer) Bodies() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.bodies...)
}

func (s *AzureServer) handler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("api-key") != s.apiKey {
		writeAzureError(w, http.StatusUnauthorized, "401", "Access denied due to invalid subscription key.")
		return
	}

	switch {
	case r.URL.Path == "/openai/models":
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"object":"list","data":[]}`)
		return
	case r.URL.Path != fmt.Sprintf("/openai/deployments/%s/chat/completions", s.deployment):
		writeAzureError(w, http.StatusNotFound, "DeploymentNotFound", "The API deployment for this resource does not exist.")
		return
	}

	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	status := s.status
	fragments := append([]string(nil), s.fragments...)
	s.mu.Unlock()

	if status != 0 {
		writeAzureError(w, status, "server_error", "The server had an error while processing your request.")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	write := func(payload string) {
		fmt.Fprintf(w, "data: %s\n\n", payload)
		if flusher != nil {
			flusher.Flush()
		}
	}

	write(`{"choices":[],"created":0,"id":"","model":"","object":"","prompt_filter_results":[{"prompt_index":0,"content_filter_results":{}}]}`)
	write(chunk(map[string]any{"role": "assistant", "content": ""}, ""))
	for _, fragment := range fragments {
		write(chunk(map[string]any{"content": fragment}, ""))
	}
	write(chunk(map[string]any{}, "stop"))
	write("[DONE]")
}

// StreamChunk renders one chat.completion.chunk payload carrying text.
func StreamChunk(text string) string {
	return chunk(map[string]any{"content": text}, "")
}

func chunk(delta map[string]any, finishReason string) string {
	choice := map[string]any{"index": 0, "delta": delta, "content_filter_results": map[string]any{}}
	if finishReason != "" {
		choice["finish_reason"] = finishReason
	} else {
		choice["finish_reason"] = nil
	}
	payload, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion.chunk",
		"created": 1718000000,
		"model":   "gpt-4o-2024-05-13",
		"choices": []any{choice},
	})
	return string(payload)
}

func writeAzureError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

// ParseSSE splits an event-stream body into its data payloads.
func ParseSSE(body string) []string {
	var events []string
	for _, line := range strings.Split(body, "\n") {
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			events = append(events, data)
		}
	}
	return events
}
