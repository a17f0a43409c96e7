package relay

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/interviewer/pkg/audit"
	"mercator-hq/interviewer/pkg/config"
	"mercator-hq/interviewer/pkg/providers"
	"mercator-hq/interviewer/pkg/proxy/types"
	"mercator-hq/interviewer/pkg/telemetry/logging"
	"mercator-hq/interviewer/pkg/telemetry/metrics"
	"mercator-hq/interviewer/pkg/telemetry/tracing"
)

// EventWriter publishes relay events to one client.
// A write error means the client is gone.
type EventWriter interface {
	WriteContent(text string) error
	WriteError(message string) error
	WriteDone() error
}

// Recorder receives one audit record per relay request.
// Record must not block.
type Recorder interface {
	Record(record *audit.Record) error
}

// Config contains relay settings.
type Config struct {
	// Persona is the content of the system turn prepended to every request.
	Persona string

	// ErrorMessage is the text of the in-band error event.
	ErrorMessage string

	// Model is the model or deployment identifier sent to the provider.
	Model string
}

// FromConfig builds a relay Config from the file config.
func FromConfig(cfg *config.Config) Config {
	model := cfg.Provider.Model
	if model == "" {
		model = cfg.Provider.Deployment
	}
	return Config{
		Persona:      cfg.Relay.Persona,
		ErrorMessage: cfg.Relay.ErrorMessage,
		Model:        model,
	}
}

// Result summarises one relay stream.
type Result struct {
	// Fragments is the number of chunks received from the provider.
	Fragments int

	// Events is the number of content events written.
	Events int

	// Skipped is the number of empty fragments not forwarded.
	Skipped int

	Outcome audit.Outcome

	// Err is the provider or write error that ended the stream, if any.
	Err error
}

var redactor = logging.NewRedactor()

// Relay forwards transcripts to a provider and streams the answer back.
// It is safe for concurrent use.
type Relay struct {
	provider     providers.Provider
	persona      atomic.Pointer[string]
	errorMessage string
	model        string

	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	recorder Recorder
}

// Option configures a Relay.
type Option func(*Relay)

// WithMetrics records stream metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Relay) { r.metrics = c }
}

// WithTracer wraps each stream in a span.
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Relay) { r.tracer = t }
}

// WithRecorder writes an audit record for each stream.
func WithRecorder(rec Recorder) Option {
	return func(r *Relay) { r.recorder = rec }
}

// New creates a relay over provider.
func New(provider providers.Provider, cfg Config, opts ...Option) *Relay {
	if cfg.Persona == "" {
		cfg.Persona = config.DefaultPersona
	}
	if cfg.ErrorMessage == "" {
		cfg.ErrorMessage = config.DefaultErrorMessage
	}

	r := &Relay{
		provider:     provider,
		errorMessage: cfg.ErrorMessage,
		model:        cfg.Model,
	}
	r.persona.Store(&cfg.Persona)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Persona returns the current persona instruction.
func (r *Relay) Persona() string {
	return *r.persona.Load()
}

// SetPersona replaces the persona for subsequent requests. An empty persona
// is ignored.
func (r *Relay) SetPersona(persona string) {
	if persona == "" {
		return
	}
	r.persona.Store(&persona)
}

// Stream relays turns to the provider and writes the answer to w. Cancelling
// ctx aborts the provider request.
func (r *Relay) Stream(ctx context.Context, requestID string, turns []types.Turn, w EventWriter) Result {
	start := time.Now()
	ctx = logging.WithProvider(ctx, r.provider.GetName())
	ctx = logging.WithModel(ctx, r.model)

	r.metrics.StreamStarted()
	ctx, span := r.tracer.Start(ctx, "relay.stream",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			tracing.AttrRequestID.String(requestID),
			tracing.AttrModel.String(r.model),
			tracing.AttrTurns.Int(len(turns)),
		),
	)
	defer span.End()
	if id := tracing.TraceID(ctx); id != "" {
		ctx = logging.WithTraceID(ctx, id)
	}

	slog.InfoContext(ctx, "relay stream started", "turns", len(turns))

	var firstFragment time.Duration
	res := r.stream(ctx, turns, w, func() {
		firstFragment = time.Since(start)
		r.metrics.FirstFragment(firstFragment)
	})
	duration := time.Since(start)

	r.metrics.StreamFinished(string(res.Outcome), duration, res.Events, res.Skipped)
	span.SetAttributes(
		tracing.AttrFragments.Int(res.Fragments),
		tracing.AttrSkipped.Int(res.Skipped),
		tracing.AttrOutcome.String(string(res.Outcome)),
		attribute.Int("relay.events", res.Events),
	)
	tracing.SetStatus(span, res.Err)

	attrs := []any{
		"outcome", res.Outcome,
		"fragments", res.Fragments,
		"events", res.Events,
		"skipped", res.Skipped,
		"first_fragment_ms", firstFragment.Milliseconds(),
		"duration_ms", duration.Milliseconds(),
	}
	switch res.Outcome {
	case audit.OutcomeCompleted:
		slog.InfoContext(ctx, "relay stream completed", attrs...)
	case audit.OutcomeClientDisconnected:
		slog.WarnContext(ctx, "client disconnected during relay stream", attrs...)
	default:
		slog.ErrorContext(ctx, "relay stream failed", append(attrs, "error", res.Err)...)
	}

	r.record(requestID, len(turns), res, start, duration, firstFragment)
	return res
}

func (r *Relay) stream(ctx context.Context, turns []types.Turn, w EventWriter, onFirst func()) Result {
	var res Result

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := &providers.CompletionRequest{
		Model:    r.model,
		Messages: toMessages(Decorate(r.Persona(), turns)),
		Stream:   true,
	}

	chunks, err := r.provider.StreamCompletion(ctx, req)
	if err != nil {
		return r.fail(ctx, w, res, err)
	}

	for chunk := range chunks {
		if chunk.Error != nil {
			return r.fail(ctx, w, res, chunk.Error)
		}

		res.Fragments++
		if chunk.Delta == "" {
			res.Skipped++
			continue
		}

		if res.Events == 0 {
			onFirst()
		}
		if err := w.WriteContent(chunk.Delta); err != nil {
			return disconnected(res, err)
		}
		res.Events++
	}

	if err := ctx.Err(); err != nil {
		return disconnected(res, err)
	}
	if err := w.WriteDone(); err != nil {
		return disconnected(res, err)
	}
	res.Outcome = audit.OutcomeCompleted
	return res
}

// fail reports a provider error in-band and terminates the stream.
func (r *Relay) fail(ctx context.Context, w EventWriter, res Result, err error) Result {
	if ctx.Err() != nil {
		return disconnected(res, err)
	}

	res.Outcome = audit.OutcomeProviderError
	res.Err = err
	r.metrics.RecordProviderError(providers.ErrorKind(err))

	if werr := w.WriteError(r.errorMessage); werr != nil {
		return res
	}
	_ = w.WriteDone()
	return res
}

func disconnected(res Result, err error) Result {
	res.Outcome = audit.OutcomeClientDisconnected
	res.Err = err
	return res
}

func (r *Relay) record(requestID string, turns int, res Result, start time.Time, duration, firstFragment time.Duration) {
	if r.recorder == nil {
		return
	}
	rec := &audit.Record{
		RequestID:     requestID,
		Provider:      r.provider.GetName(),
		Model:         r.model,
		Turns:         turns,
		Fragments:     res.Fragments,
		Events:        res.Events,
		Skipped:       res.Skipped,
		Outcome:       res.Outcome,
		ErrorKind:     providers.ErrorKind(res.Err),
		StartedAt:     start.UTC(),
		Duration:      duration,
		FirstFragment: firstFragment,
	}
	if res.Err != nil {
		rec.Error = redactor.RedactString(res.Err.Error())
	}
	if err := r.recorder.Record(rec); err != nil {
		slog.Warn("failed to queue audit record", "request_id", requestID, "error", err)
	}
}
