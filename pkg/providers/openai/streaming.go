package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mercator-hq/interviewer/pkg/providers"
)

// maxLineSize bounds a single SSE line. Content filter annotations can make
// Azure chunks larger than bufio's 64KiB default.
const maxLineSize = 1 << 20

// streamReader reads server-sent events from a chat completions stream.
type streamReader struct {
	provider *providers.HTTPProvider
	body     io.ReadCloser
	scanner  *bufio.Scanner
	closed   bool
}

func newStreamReader(ctx context.Context, provider *providers.HTTPProvider, url string, req *ChatRequest, headers map[string]string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := provider.DoRequest(ctx, http.MethodPost, url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	return &streamReader{
		provider: provider,
		body:     resp.Body,
		scanner:  scanner,
	}, nil
}

// Read returns the next chunk, or io.EOF after "[DONE]" or end of body.
func (s *streamReader) Read(ctx context.Context) (*providers.StreamChunk, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				return nil, &providers.StreamError{
					Provider: s.provider.GetName(),
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
			return nil, io.EOF
		}

		data, ok := strings.CutPrefix(s.scanner.Text(), "data:")
		if !ok {
			// Blank separators, comments, event and id fields.
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil, io.EOF
		}

		var payload StreamResponse
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.provider.GetName(),
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream chunk: %w", err),
			}
		}

		if payload.Error != nil {
			return nil, &providers.StreamError{
				Provider: s.provider.GetName(),
				Message:  payload.Error.Message,
			}
		}

		return transformStreamChunk(&payload), nil
	}
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
