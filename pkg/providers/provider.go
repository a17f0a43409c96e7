package providers

import "context"

// Provider is the interface the relay uses to reach a completion API.
//
// All methods accept a context.Context for cancellation. Implementations
// must abort in-flight network work when the context is cancelled.
type Provider interface {
	// StreamCompletion opens a streaming completion and returns a channel of
	// fragments in arrival order.
	//
	// An error returned directly means the stream never opened. Once open,
	// a failure is delivered as a final chunk with Error set. The channel is
	// closed when the stream ends, fails, or ctx is cancelled.
	StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan *StreamChunk, error)

	// HealthCheck sends a lightweight request to verify the provider is
	// reachable and accepts the configured credentials.
	HealthCheck(ctx context.Context) error

	// GetName returns the provider's configured name.
	GetName() string

	// IsHealthy returns the current health status of the provider.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases idle connections and stops background checks.
	Close() error
}

// StreamReader abstracts the wire protocol of a provider stream.
type StreamReader interface {
	// Read returns the next chunk.
	// It returns nil and io.EOF when the stream ends normally.
	Read(ctx context.Context) (*StreamChunk, error)

	// Close closes the stream and releases resources.
	Close() error
}
