package types

// DoneSentinel is the payload of the final event of every relay stream.
const DoneSentinel = "[DONE]"

// ContentEvent carries one non-empty fragment of model output.
type ContentEvent struct {
	Content string `json:"content"`
}

// ErrorEvent reports a provider failure inside an already-open stream.
// The message is generic; details stay in server logs.
type ErrorEvent struct {
	Error string `json:"error"`
}

// Event is a decoded relay event as seen by a consumer.
// Exactly one of Content, Err or Done is meaningful.
type Event struct {
	// Content is the fragment text for content events.
	Content string

	// Err is the error message for error events.
	Err string

	// Done is true for the terminating sentinel.
	Done bool
}

// IsError reports whether the event is an in-band error.
func (e Event) IsError() bool {
	return e.Err != ""
}
