// Package providertest provides scripted providers and a fake Azure OpenAI
// endpoint for tests.
package providertest

import (
	"context"
	"errors"
	"sync"

	"mercator-hq/interviewer/pkg/providers"
)

// Step is one scripted stream event: a fragment or a failure.
type Step struct {
	Delta string
	Err   error
}

// Fragments returns steps that emit each text in order.
func Fragments(texts ...string) []Step {
	steps := make([]Step, len(texts))
	for i, text := range texts {
		steps[i] = Step{Delta: text}
	}
	return steps
}

// FakeProvider is a scripted providers.Provider.
// It records every request it receives.
type FakeProvider struct {
	mu       sync.Mutex
	name     string
	steps    []Step
	openErr  error
	healthy  bool
	requests []*providers.CompletionRequest

	// Block, when non-nil, is waited on before each step is sent. Tests use
	// it to hold a stream open.
	Block chan struct{}

	// Canceled is closed when a stream observes context cancellation.
	Canceled chan struct{}
}

var _ providers.Provider = (*FakeProvider)(nil)

// NewFakeProvider returns a healthy provider that streams steps.
func NewFakeProvider(steps ...Step) *FakeProvider {
	return &FakeProvider{
		name:     "fake",
		steps:    steps,
		healthy:  true,
		Canceled: make(chan struct{}),
	}
}

// FailOpen makes StreamCompletion return err without opening a stream.
func (f *FakeProvider) FailOpen(err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr = err
	return f
}

// SetHealthy sets the health status reported by the provider.
func (f *FakeProvider) SetHealthy(healthy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthy = healthy
}

// Requests returns the requests received so far.
func (f *FakeProvider) Requests() []*providers.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*providers.CompletionRequest(nil), f.requests...)
}

// StreamCompletion replays the script.
func (f *FakeProvider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	openErr := f.openErr
	steps := append([]Step(nil), f.steps...)
	f.mu.Unlock()

	if openErr != nil {
		return nil, openErr
	}

	chunks := make(chan *providers.StreamChunk)
	go func() {
		defer close(chunks)
		for _, step := range steps {
			if f.Block != nil {
				select {
				case <-f.Block:
				case <-ctx.Done():
					f.markCanceled()
					return
				}
			}

			chunk := &providers.StreamChunk{ID: "fake-1", Model: req.Model, Delta: step.Delta, Error: step.Err}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				f.markCanceled()
				return
			}
			if step.Err != nil {
				return
			}
		}
	}()
	return chunks, nil
}

func (f *FakeProvider) markCanceled() {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.Canceled:
	default:
		close(f.Canceled)
	}
}

// HealthCheck reports the scripted health.
func (f *FakeProvider) HealthCheck(ctx context.Context) error {
	if !f.IsHealthy() {
		return errors.New("fake provider is unhealthy")
	}
	return nil
}

// GetName returns the provider name.
func (f *FakeProvider) GetName() string {
	return f.name
}

// IsHealthy returns the scripted health.
func (f *FakeProvider) IsHealthy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthy
}

// GetHealth returns the scripted health.
func (f *FakeProvider) GetHealth() providers.ProviderHealth {
	f.mu.Lock()
	defer f.mu.Unlock()
	return providers.ProviderHealth{IsHealthy: f.healthy, TotalRequests: int64(len(f.requests))}
}

// Close is a no-op.
func (f *FakeProvider) Close() error {
	return nil
}
