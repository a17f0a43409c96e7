package openai

import (
	"encoding/json"

	"mercator-hq/interviewer/pkg/providers"
)

// ChatRequest is the chat completions request body.
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
	User        string        `json:"user,omitempty"`
	N           int           `json:"n,omitempty"`
}

// ChatMessage is a message in chat completions format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatUsage is token usage in chat completions format.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamResponse is one decoded "data:" payload of a streaming response.
type StreamResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
	Usage   *ChatUsage     `json:"usage,omitempty"`

	// PromptFilterResults is sent by Azure on the leading chunk.
	PromptFilterResults json.RawMessage `json:"prompt_filter_results,omitempty"`

	// Error is set when the service fails after the stream started.
	Error *APIError `json:"error,omitempty"`
}

// StreamChoice is a choice in a stream chunk.
type StreamChoice struct {
	Index        int         `json:"index"`
	Delta        StreamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// StreamDelta is the incremental content in a stream chunk.
type StreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// APIError is the error object used by both services.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// ModelList is the response of the models listing used as a health probe.
type ModelList struct {
	Object string            `json:"object"`
	Data   []json.RawMessage `json:"data"`
}

// transformRequest converts a provider-agnostic request to the wire format.
func transformRequest(req *providers.CompletionRequest) *ChatRequest {
	out := &ChatRequest{
		Model:       req.Model,
		Messages:    make([]ChatMessage, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
		User:        req.User,
		N:           1,
	}
	for i, msg := range req.Messages {
		out.Messages[i] = ChatMessage{Role: msg.Role, Content: msg.Content}
	}
	return out
}

// transformStreamChunk converts a decoded stream payload to a StreamChunk.
// Payloads without choices become structural chunks with an empty Delta.
func transformStreamChunk(chunk *StreamResponse) *providers.StreamChunk {
	result := &providers.StreamChunk{
		ID:      chunk.ID,
		Model:   chunk.Model,
		Created: chunk.Created,
	}

	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		result.Delta = choice.Delta.Content
		result.FinishReason = normalizeFinishReason(choice.FinishReason)
	}

	if chunk.Usage != nil {
		result.Usage = &providers.TokenUsage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}

	return result
}

func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop", "end_turn":
		return providers.FinishReasonStop
	case "length", "max_tokens":
		return providers.FinishReasonLength
	case "content_filter":
		return providers.FinishReasonContentFilter
	default:
		return reason
	}
}
