package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mercator-hq/interviewer/pkg/proxy/types"
)

// GenericErrorMessage is shown when a reply fails without a more specific
// message.
const GenericErrorMessage = "Sorry, an error occurred. Please try again."

var (
	// ErrBusy is returned by Submit while another submission is in flight.
	ErrBusy = errors.New("a reply is still streaming")

	// ErrReplyFailed is returned by Submit when the relay reported an in-band
	// error before its sentinel.
	ErrReplyFailed = errors.New("relay reported an error")
)

// State is the submission state of a session.
type State int

// Session states. A submission moves Idle, Sending, Streaming, then Finalized
// or Errored, and back to Idle.
const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateFinalized
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFinalized:
		return "finalized"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures a Session.
type Option func(*Session)

// WithStateHook registers fn to observe every state transition. fn runs with
// the session lock held and must not call back into the session.
func WithStateHook(fn func(State)) Option {
	return func(s *Session) {
		s.onState = fn
	}
}

// WithIDGenerator replaces the request ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		s.newID = fn
	}
}

// WithTranscript seeds the session with earlier turns.
func WithTranscript(turns []types.Turn) Option {
	return func(s *Session) {
		s.transcript = slices.Clone(turns)
	}
}

// Session is one client conversation. It owns the transcript; turns are only
// ever appended.
type Session struct {
	transport Transport
	surface   Surface
	newID     func() string
	onState   func(State)

	mu         sync.Mutex
	state      State
	transcript []types.Turn
}

// NewSession creates an idle session with an empty transcript.
func NewSession(transport Transport, surface Surface, opts ...Option) *Session {
	s := &Session{
		transport: transport,
		surface:   surface,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the committed turns.
func (s *Session) Transcript() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

// Submit sends input as a user turn and blocks until the reply is finalized
// or fails.
//
// Whitespace-only input is ignored. While another submission is in flight
// Submit returns ErrBusy without touching the transcript. The assistant turn
// is committed only when the stream ends with its sentinel and no in-band
// error was reported.
func (s *Session) Submit(ctx context.Context, input string) error {
	content := strings.TrimSpace(input)
	if content == "" {
		return nil
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	turn := types.UserTurn(content)
	s.transcript = append(s.transcript, turn)
	transcript := slices.Clone(s.transcript)
	s.setStateLocked(StateSending)
	s.mu.Unlock()

	id := s.newID()
	logger := slog.With("request_id", id)

	s.surface.ShowTurn(turn)
	s.surface.ClearInput()
	s.surface.ShowTyping()

	stream, err := s.transport.Open(ctx, id, transcript)
	if err != nil {
		logger.Warn("failed to open reply stream", "error", err)
		return s.channelError(id, err)
	}
	defer stream.Close()

	s.setState(StateStreaming)

	var reply strings.Builder
	failed := false
	for {
		ev, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			logger.Warn("reply stream ended without sentinel", "error", err, "received", reply.Len())
			return s.channelError(id, err)
		}

		switch {
		case ev.Done:
			_ = stream.Close()
			s.surface.HideTyping()
			if failed {
				s.finish(StateErrored)
				return ErrReplyFailed
			}
			s.commit(id, reply.String())
			return nil

		case ev.IsError():
			logger.Warn("relay reported an error", "message", ev.Err)
			if !failed {
				failed = true
				if reply.Len() > 0 {
					s.surface.MarkFailed(id)
				}
				s.surface.ShowError(GenericErrorMessage)
			}

		default:
			if failed {
				continue
			}
			reply.WriteString(ev.Content)
			s.surface.ShowPartial(id, reply.String())
		}
	}
}

func (s *Session) commit(id, content string) {
	s.mu.Lock()
	s.transcript = append(s.transcript, types.AssistantTurn(content))
	s.mu.Unlock()

	s.surface.Finalize(id, content)
	s.finish(StateFinalized)
}

// channelError ends a submission whose push channel failed.
func (s *Session) channelError(id string, err error) error {
	s.surface.HideTyping()
	s.surface.MarkFailed(id)

	message := GenericErrorMessage
	var relayErr *RelayError
	if errors.As(err, &relayErr) && relayErr.Message != "" {
		message = relayErr.Message
	}
	s.surface.ShowError(message)

	s.finish(StateErrored)
	return fmt.Errorf("reply stream failed: %w", err)
}

// finish records the terminal state and returns the session to idle.
func (s *Session) finish(terminal State) {
	s.mu.Lock()
	s.setStateLocked(terminal)
	s.setStateLocked(StateIdle)
	s.mu.Unlock()
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.setStateLocked(state)
	s.mu.Unlock()
}

func (s *Session) setStateLocked(state State) {
	s.state = state
	if s.onState != nil {
		s.onState(state)
	}
}
