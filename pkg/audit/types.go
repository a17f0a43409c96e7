package audit

import (
	"context"
	"time"
)

// Outcome describes how a relay stream ended.
type Outcome string

const (
	// OutcomeCompleted means the provider finished and [DONE] was sent.
	OutcomeCompleted Outcome = "completed"

	// OutcomeProviderError means the provider failed before or during the
	// stream and the client received the generic error event.
	OutcomeProviderError Outcome = "provider_error"

	// OutcomeClientDisconnected means the client went away mid-stream.
	OutcomeClientDisconnected Outcome = "client_disconnected"
)

// Record is the audit entry for one relay request.
type Record struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`

	// Turns is the number of client turns, excluding the persona.
	Turns int `json:"turns"`

	// Fragments is the number of fragments received from the provider,
	// Events the number of content events sent, Skipped the empty ones.
	Fragments int `json:"fragments"`
	Events    int `json:"events"`
	Skipped   int `json:"skipped"`

	Outcome   Outcome `json:"outcome"`
	Error     string  `json:"error,omitempty"`
	ErrorKind string  `json:"error_kind,omitempty"`

	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration_ns"`
	FirstFragment time.Duration `json:"first_fragment_ns"`
}

// Query filters records. Zero fields are ignored.
type Query struct {
	Since   time.Time
	Until   time.Time
	Outcome Outcome

	// Limit caps the result size. Results are newest first.
	Limit int
}

// Matches reports whether r satisfies q.
func (q Query) Matches(r *Record) bool {
	if !q.Since.IsZero() && r.StartedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !r.StartedAt.Before(q.Until) {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}

// Storage persists audit records.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns matching records, newest first.
	Query(ctx context.Context, q Query) ([]*Record, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, q Query) (int64, error)

	// DeleteBefore removes records started before cutoff and returns how
	// many were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the backend.
	Close() error
}
