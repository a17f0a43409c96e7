package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mercator-hq/interviewer/pkg/proxy/types"
	"mercator-hq/interviewer/pkg/telemetry/tracing"
)

const (
	// chatPath is the relay endpoint, relative to the base URL.
	chatPath = "/chat"

	// maxEventSize bounds a single event line.
	maxEventSize = 1 << 20

	// maxErrorBody bounds how much of a rejected response is read.
	maxErrorBody = 64 << 10
)

// Transport opens push channels to the relay.
type Transport interface {
	// Open sends transcript and returns the channel carrying the reply.
	Open(ctx context.Context, requestID string, transcript []types.Turn) (Stream, error)
}

// Stream is one open push channel.
type Stream interface {
	// Next returns the next event. It returns io.EOF once the channel ended,
	// whether or not a sentinel was seen.
	Next() (types.Event, error)

	// Close releases the channel. It is safe to call more than once.
	Close() error
}

// RelayError is returned by Open when the relay rejects a request before
// opening its event stream.
type RelayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RelayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("relay returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Message)
}

// EventError is returned by Next for an event payload that cannot be decoded.
type EventError struct {
	Data  string
	Cause error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("malformed event %q: %v", e.Data, e.Cause)
}

func (e *EventError) Unwrap() error {
	return e.Cause
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// HTTPTransport opens GET /chat event streams.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport returns a transport for the relay at baseURL.
func NewHTTPTransport(baseURL string, opts ...TransportOption) (*HTTPTransport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid relay URL %q: scheme must be http or https", baseURL)
	}

	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: replies stream for as long as the model writes.
		client: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// URL returns the request URL for transcript.
func (t *HTTPTransport) URL(transcript []types.Turn) (string, error) {
	if transcript == nil {
		transcript = []types.Turn{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(transcript); err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}
	q := url.Values{"messages": {strings.TrimSuffix(buf.String(), "\n")}}
	return t.baseURL + chatPath + "?" + q.Encode(), nil
}

// Open issues the request and returns the event stream.
func (t *HTTPTransport) Open(ctx context.Context, requestID string, transcript []types.Turn) (Stream, error) {
	target, err := t.URL(transcript)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	tracing.Inject(ctx, req.Header)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, relayError(resp)
	}

	return newEventStream(resp.Body), nil
}

func relayError(resp *http.Response) error {
	relayErr := &RelayError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return relayErr
	}

	var payload types.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		relayErr.Message = payload.Error.Message
		relayErr.Code = payload.Error.Code
	}
	return relayErr
}

// eventStream decodes "data:" events from a response body.
type eventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	closed  bool
}

func newEventStream(body io.ReadCloser) *eventStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventSize)
	return &eventStream{body: body, scanner: scanner}
}

func (s *eventStream) Next() (types.Event, error) {
	if s.done || s.closed {
		return types.Event{}, io.EOF
	}

	var data []string
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			if len(data) == 0 {
				continue
			}
			return s.decode(strings.Join(data, "\n"))
		}
		value, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// Comments, event, id and retry fields.
			continue
		}
		data = append(data, strings.TrimPrefix(value, " "))
	}

	if err := s.scanner.Err(); err != nil {
		return types.Event{}, fmt.Errorf("failed to read event stream: %w", err)
	}
	if len(data) > 0 {
		// An event without its blank terminator still counts.
		return s.decode(strings.Join(data, "\n"))
	}
	return types.Event{}, io.EOF
}

func (s *eventStream) decode(data string) (types.Event, error) {
	if strings.TrimSpace(data) == types.DoneSentinel {
		s.done = true
		return types.Event{Done: true}, nil
	}

	var payload struct {
		Content string `json:"content"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return types.Event{}, &EventError{Data: data, Cause: err}
	}
	if payload.Error != "" {
		return types.Event{Err: payload.Error}, nil
	}
	return types.Event{Content: payload.Content}, nil
}

func (s *eventStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
