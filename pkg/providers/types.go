package providers

import "time"

// Message is a single message in a provider-agnostic conversation.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// CompletionRequest is a provider-agnostic completion request.
type CompletionRequest struct {
	// Model is the model identifier. Azure deployments ignore it in the URL
	// but it is still forwarded in the body.
	Model string `json:"model"`

	// Messages is the conversation, system instruction first.
	Messages []Message `json:"messages"`

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens caps the completion length. Zero leaves the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stream requests incremental delivery.
	Stream bool `json:"stream,omitempty"`

	// User is an optional end-user identifier forwarded for abuse monitoring.
	User string `json:"user,omitempty"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk is a single fragment of a streaming response.
type StreamChunk struct {
	// ID is the response identifier (same across all chunks)
	ID string `json:"id"`

	// Model is the model generating the response
	Model string `json:"model"`

	// Delta is the incremental text. Empty for structural chunks.
	Delta string `json:"delta"`

	// FinishReason is set on the chunk that ends generation
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage is included in the final chunk when the provider reports it
	Usage *TokenUsage `json:"usage,omitempty"`

	// Error is set on the last chunk when the stream failed
	Error error `json:"-"`

	// Created is the Unix timestamp when the chunk was created
	Created int64 `json:"created"`
}

// ProviderHealth tracks the health status of a provider.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last health update
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential failures
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// ProviderConfig contains configuration for a single provider instance.
type ProviderConfig struct {
	// Name is the provider identifier used in logs and errors
	Name string

	// Type is the provider dialect ("azure" or "openai")
	Type string

	// BaseURL is the API endpoint. For Azure this is the resource endpoint,
	// e.g. https://my-resource.openai.azure.com
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// APIVersion is the Azure api-version query parameter
	APIVersion string

	// Deployment is the Azure deployment name
	Deployment string

	// Timeout bounds the wait for response headers. The streamed body is
	// not subject to it.
	Timeout time.Duration

	// HealthCheckInterval is how often to run health checks
	HealthCheckInterval time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Provider types.
const (
	TypeAzure  = "azure"
	TypeOpenAI = "openai"
)

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)
