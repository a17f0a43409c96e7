// Package providers defines the abstraction over streaming completion APIs
// used by the relay.
//
// # Overview
//
// A Provider turns an ordered list of messages into a channel of incremental
// text fragments. The relay never talks to a vendor API directly; it only
// sees StreamChunk values and the typed errors declared in this package.
//
// # Architecture
//
//  1. Provider Interface - the contract the relay depends on
//  2. Base HTTP Provider - pooled HTTP transport, status mapping, health tracking
//  3. Provider Adapters - vendor dialects (see the openai subpackage, which
//     also speaks the Azure OpenAI deployment dialect)
//
// # Streaming
//
//	chunks, err := provider.StreamCompletion(ctx, &providers.CompletionRequest{
//	    Model:    "gpt-4o",
//	    Messages: []providers.Message{{Role: "user", Content: "Hi"}},
//	    Stream:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	for chunk := range chunks {
//	    if chunk.Error != nil {
//	        return chunk.Error
//	    }
//	    fmt.Print(chunk.Delta)
//	}
//
// Chunks with an empty Delta are structural (role announcements, finish
// markers, content filter results) and carry no text.
//
// # Errors
//
// Failures are reported with typed errors so callers can classify them
// with errors.As:
//
//   - AuthError: the provider rejected the credentials (401/403)
//   - RateLimitError: the provider throttled the request (429)
//   - TimeoutError: no response headers within the configured timeout
//   - ParseError: the provider sent a body that could not be decoded
//   - StreamError: the stream broke after it was opened
//   - ProviderError: any other non-2xx response
//   - ConfigError, ValidationError: rejected before any network call
//
// ErrorKind maps any of them to a short label for metrics.
//
// # Retries
//
// Requests are sent exactly once. A failed stream ends the relay for that
// request; callers decide whether to ask again.
//
// # Health
//
// HTTPProvider tracks request outcomes and marks itself unhealthy after
// three consecutive failures. StartHealthChecker adds periodic probes.
package providers
