package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/interviewer/pkg/proxy/types"
)

type step struct {
	ev  types.Event
	err error
}

func content(text string) step { return step{ev: types.Event{Content: text}} }
func inBandError() step { return step{ev: types.Event{Err: "An error occurred"}} }
func done() step { return step{ev: types.Event{Done: true}} }

type scriptedStream struct {
	mu     sync.Mutex
	steps  []step
	block  chan struct{}
	closed bool
}

func (s *scriptedStream) Next() (types.Event, error) {
	if s.block != nil {
		<-s.block
		s.block = nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return types.Event{}, io.EOF
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.ev, st.err
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptedStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeTransport struct {
	mu      sync.Mutex
	streams []*scriptedStream
	openErr error
	opens   [][]types.Turn
	ids     []string
}

func (f *fakeTransport) Open(_ context.Context, requestID string, transcript []types.Turn) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens = append(f.opens, transcript)
	f.ids = append(f.ids, requestID)
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := f.streams[0]
	f.streams = f.streams[1:]
	return s, nil
}

func (f *fakeTransport) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opens)
}

type recordingSurface struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingSurface) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingSurface) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingSurface) ShowTurn(t types.Turn) { r.add("turn:" + string(t.Role) + ":" + t.Content) }
func (r *recordingSurface) ClearInput() { r.add("clear") }
func (r *recordingSurface) ShowTyping() { r.add("typing") }
func (r *recordingSurface) HideTyping() { r.add("hide") }
func (r *recordingSurface) ShowPartial(id, text string) { r.add("partial:" + id + ":" + text) }
func (r *recordingSurface) Finalize(id, text string) { r.add("final:" + id + ":" + text) }
func (r *recordingSurface) MarkFailed(id string) { r.add("failed:" + id) }
func (r *recordingSurface) ShowError(message string) { r.add("error:" + message) }

func fixedID(id string) Option {
	return WithIDGenerator(func() string { return id })
}

func TestSubmit_Hello(t *testing.T) {
	stream := &scriptedStream{steps: []step{content("Hel"), content("lo!"), done()}}
	transport := &fakeTransport{streams: []*scriptedStream{stream}}
	surface := &recordingSurface{}

	var states []State
	session := NewSession(transport, surface, fixedID("r1"), WithStateHook(func(s State) {
		states = append(states, s)
	}))

	require.NoError(t, session.Submit(context.Background(), "Hi"))

	assert.Equal(t, []types.Turn{types.UserTurn("Hi"), types.AssistantTurn("Hello!")}, session.Transcript())
	assert.Equal(t, [][]types.Turn{{types.UserTurn("Hi")}}, transport.opens)
	assert.Equal(t, []string{
		"turn:user:Hi",
		"clear",
		"typing",
		"partial:r1:Hel",
		"partial:r1:Hello!",
		"hide",
		"final:r1:Hello!",
	}, surface.Calls())
	assert.Equal(t, []State{StateSending, StateStreaming, StateFinalized, StateIdle}, states)
	assert.Equal(t, StateIdle, session.State())
	assert.True(t, stream.isClosed())
}

func TestSubmit_TrimsInput(t *testing.T) {
	transport := &fakeTransport{streams: []*scriptedStream{{steps: []step{content("ok"), done()}}}}
	session := NewSession(transport, &recordingSurface{})

	require.NoError(t, session.Submit(context.Background(), "  Hi there \n"))
	assert.Equal(t, types.UserTurn("Hi there"), session.Transcript()[0])
}

func TestSubmit_WhitespaceIsNoop(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		transport := &fakeTransport{}
		surface := &recordingSurface{}
		session := NewSession(transport, surface)

		require.NoError(t, session.Submit(context.Background(), input))
		assert.Empty(t, session.Transcript())
		assert.Zero(t, transport.openCount())
		assert.Empty(t, surface.Calls())
		assert.Equal(t, StateIdle, session.State())
	}
}

func TestSubmit_BusyWhileStreaming(t *testing.T) {
	block := make(chan struct{})
	stream := &scriptedStream{steps: []step{content("Hel"), done()}, block: block}
	transport := &fakeTransport{streams: []*scriptedStream{stream}}
	session := NewSession(transport, &recordingSurface{})

	errCh := make(chan error, 1)
	go func() { errCh <- session.Submit(context.Background(), "first") }()

	require.Eventually(t, func() bool { return session.State() == StateStreaming }, time.Second, 5*time.Millisecond)

	err := session.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, []types.Turn{types.UserTurn("first")}, session.Transcript())
	assert.Equal(t, 1, transport.openCount())

	close(block)
	require.NoError(t, <-errCh)
	assert.Equal(t, []types.Turn{types.UserTurn("first"), types.AssistantTurn("Hel")}, session.Transcript())
}

func TestSubmit_InBandErrorAfterPartial(t *testing.T) {
	transport := &fakeTransport{streams: []*scriptedStream{
		{steps: []step{content("Hel"), inBandError(), done()}},
	}}
	surface := &recordingSurface{}
	session := NewSession(transport, surface, fixedID("r1"))

	err := session.Submit(context.Background(), "Hi")
	assert.ErrorIs(t, err, ErrReplyFailed)

	assert.Equal(t, []types.Turn{types.UserTurn("Hi")}, session.Transcript())
	assert.Equal(t, []string{
		"turn:user:Hi",
		"clear",
		"typing",
		"partial:r1:Hel",
		"failed:r1",
		"error:" + GenericErrorMessage,
		"hide",
	}, surface.Calls())
	assert.Equal(t, StateIdle, session.State())
}

func TestSubmit_FailureBeforeAnyFragment(t *testing.T) {
	transport := &fakeTransport{streams: []*scriptedStream{{steps: []step{inBandError(), done()}}}}
	surface := &recordingSurface{}

	var states []State
	session := NewSession(transport, surface, fixedID("r1"), WithStateHook(func(s State) {
		states = append(states, s)
	}))

	err := session.Submit(context.Background(), "Hi")
	assert.ErrorIs(t, err, ErrReplyFailed)

	assert.Equal(t, []types.Turn{types.UserTurn("Hi")}, session.Transcript())
	calls := surface.Calls()
	assert.Contains(t, calls, "error:"+GenericErrorMessage)
	assert.Equal(t, "hide", calls[len(calls)-1])
	assert.NotContains(t, calls, "failed:r1")
	assert.Equal(t, []State{StateSending, StateStreaming, StateErrored, StateIdle}, states)
}

func TestSubmit_ContentAfterErrorIgnored(t *testing.T) {
	transport := &fakeTransport{streams: []*scriptedStream{
		{steps: []step{inBandError(), content("late"), done()}},
	}}
	surface := &recordingSurface{}
	session := NewSession(transport, surface, fixedID("r1"))

	assert.ErrorIs(t, session.Submit(context.Background(), "Hi"), ErrReplyFailed)
	assert.NotContains(t, surface.Calls(), "partial:r1:late")
}

func TestSubmit_ChannelErrors(t *testing.T) {
	tests := []struct {
		name        string
		steps       []step
		wantErr     error
		wantPartial bool
	}{
		{
			name:        "eof without sentinel",
			steps:       []step{content("Hel")},
			wantErr:     io.ErrUnexpectedEOF,
			wantPartial: true,
		},
		{
			name:    "read failure",
			steps:   []step{{err: context.DeadlineExceeded}},
			wantErr: context.DeadlineExceeded,
		},
		{
			name:        "malformed event",
			steps:       []step{content("Hel"), {err: &EventError{Data: "{", Cause: errors.New("bad json")}}},
			wantPartial: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := &scriptedStream{steps: tt.steps}
			transport := &fakeTransport{streams: []*scriptedStream{stream}}
			surface := &recordingSurface{}
			session := NewSession(transport, surface, fixedID("r1"))

			err := session.Submit(context.Background(), "Hi")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			assert.Equal(t, []types.Turn{types.UserTurn("Hi")}, session.Transcript())
			calls := surface.Calls()
			assert.Contains(t, calls, "hide")
			assert.Contains(t, calls, "failed:r1")
			assert.Contains(t, calls, "error:"+GenericErrorMessage)
			assert.Equal(t, tt.wantPartial, contains(calls, "partial:r1:Hel"))
			assert.True(t, stream.isClosed())
			assert.Equal(t, StateIdle, session.State())
		})
	}
}

func TestSubmit_RelayRejectionShowsMessage(t *testing.T) {
	transport := &fakeTransport{openErr: &RelayError{
		StatusCode: http.StatusBadRequest,
		Code:       types.CodeInvalidJSON,
		Message:    "messages is not valid JSON",
	}}
	surface := &recordingSurface{}
	session := NewSession(transport, surface, fixedID("r1"))

	err := session.Submit(context.Background(), "Hi")

	var relayErr *RelayError
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, http.StatusBadRequest, relayErr.StatusCode)
	assert.Contains(t, surface.Calls(), "error:messages is not valid JSON")
	assert.Equal(t, []types.Turn{types.UserTurn("Hi")}, session.Transcript())
	assert.Equal(t, StateIdle, session.State())
}

func TestSubmit_SendsWholeTranscript(t *testing.T) {
	transport := &fakeTransport{streams: []*scriptedStream{
		{steps: []step{content("Hello!"), done()}},
		{steps: []step{content("Sure."), done()}},
	}}
	session := NewSession(transport, &recordingSurface{})

	require.NoError(t, session.Submit(context.Background(), "Hi"))
	require.NoError(t, session.Submit(context.Background(), "Next question"))

	require.Len(t, transport.opens, 2)
	assert.Equal(t, []types.Turn{
		types.UserTurn("Hi"),
		types.AssistantTurn("Hello!"),
		types.UserTurn("Next question"),
	}, transport.opens[1])
	assert.NotEqual(t, transport.ids[0], transport.ids[1], "each submission gets its own request id")
	assert.Len(t, session.Transcript(), 4)
}

func TestSubmit_SeededTranscript(t *testing.T) {
	seed := []types.Turn{types.UserTurn("Hi"), types.AssistantTurn("Hello!")}
	transport := &fakeTransport{streams: []*scriptedStream{{steps: []step{content("Go on."), done()}}}}
	session := NewSession(transport, &recordingSurface{}, WithTranscript(seed))

	seed[0].Content = "mutated"
	require.NoError(t, session.Submit(context.Background(), "More"))
	assert.Equal(t, "Hi", transport.opens[0][0].Content)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
