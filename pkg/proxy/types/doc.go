// Package types defines the wire contract shared by the relay server and the
// chat client.
//
// # Core Types
//
// Transcript types:
//   - Turn: one {role, content} entry of a conversation transcript
//   - Role: system, user or assistant
//
// Event payloads (carried as the JSON body of an SSE "data:" line):
//   - ContentEvent: {"content": "..."} for one non-empty model fragment
//   - ErrorEvent: {"error": "..."} for a provider failure
//   - DoneSentinel: the literal "[DONE]" that ends every stream
//
// Error types:
//   - ErrorResponse: JSON body returned for rejected requests
//   - ErrorDetail: error details with type, message, param, code
//
// # Wire Format
//
// A relay response is a text/event-stream body:
//
//	data: {"content":"Hel"}
//
//	data: {"content":"lo!"}
//
//	data: [DONE]
//
// The transcript travels in the opposite direction as a URL-encoded JSON
// array in the "messages" query parameter:
//
//	GET /chat?messages=%5B%7B%22role%22%3A%22user%22%2C%22content%22%3A%22Hi%22%7D%5D
package types
