package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mercator-hq/interviewer/pkg/providers"
)

const (
	// DefaultBaseURL is used for the OpenAI dialect when no base URL is set.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultAPIVersion is the Azure api-version used when none is set.
	DefaultAPIVersion = "2024-05-01-preview"

	defaultTimeout         = 60 * time.Second
	defaultMaxIdleConns    = 100
	defaultIdleConnTimeout = 90 * time.Second

	// streamBuffer is the capacity of the chunk channel.
	streamBuffer = 100
)

// Provider is the chat completions adapter.
type Provider struct {
	*providers.HTTPProvider
	azure bool
}

var _ providers.Provider = (*Provider)(nil)

// NewProvider validates config, applies defaults and returns a ready adapter.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Type == "" {
		config.Type = providers.TypeOpenAI
	}
	if config.Name == "" {
		config.Name = config.Type
	}

	azure := config.Type == providers.TypeAzure
	switch config.Type {
	case providers.TypeAzure:
		if config.BaseURL == "" {
			return nil, &providers.ConfigError{Provider: config.Name, Field: "base_url", Message: "Azure endpoint is required"}
		}
		if config.Deployment == "" {
			return nil, &providers.ConfigError{Provider: config.Name, Field: "deployment", Message: "deployment is required"}
		}
		if config.APIVersion == "" {
			config.APIVersion = DefaultAPIVersion
		}
	case providers.TypeOpenAI:
		if config.BaseURL == "" {
			config.BaseURL = DefaultBaseURL
		}
	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type %q", config.Type),
		}
	}

	if config.APIKey == "" {
		return nil, &providers.ConfigError{Provider: config.Name, Field: "api_key", Message: "API key is required"}
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return nil, &providers.ConfigError{Provider: config.Name, Field: "base_url", Message: err.Error()}
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = defaultMaxIdleConns
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = config.MaxIdleConns
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = defaultIdleConnTimeout
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
		azure:        azure,
	}
	p.SetHealthProbe(p.probe)

	slog.Info("provider initialized",
		"provider", config.Name,
		"type", config.Type,
		"base_url", config.BaseURL,
		"deployment", config.Deployment,
		"api_version", config.APIVersion,
	)

	return p, nil
}

// StreamCompletion opens a streaming chat completion.
//
// The returned channel yields every decoded chunk, including structural
// chunks with an empty Delta. A read failure is delivered as a final chunk
// with Error set; a normal end closes the channel without an error chunk.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	body := transformRequest(req)
	body.Stream = true
	if p.azure {
		// The deployment in the URL selects the model.
		body.Model = ""
	}

	headers := p.authHeaders()
	headers["Accept"] = "text/event-stream"

	stream, err := newStreamReader(ctx, p.HTTPProvider, p.completionsURL(), body, headers)
	if err != nil {
		return nil, err
	}

	chunks := make(chan *providers.StreamChunk, streamBuffer)

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			chunk, err := stream.Read(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					p.RecordFailure(err)
				}
				select {
				case chunks <- &providers.StreamChunk{Error: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, nil
}

// completionsURL returns the chat completions endpoint for the dialect.
func (p *Provider) completionsURL() string {
	cfg := p.GetConfig()
	if p.azure {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			cfg.BaseURL, url.PathEscape(cfg.Deployment), url.QueryEscape(cfg.APIVersion))
	}
	return cfg.BaseURL + "/chat/completions"
}

// modelsURL returns the models listing used by the health probe.
func (p *Provider) modelsURL() string {
	cfg := p.GetConfig()
	if p.azure {
		return fmt.Sprintf("%s/openai/models?api-version=%s", cfg.BaseURL, url.QueryEscape(cfg.APIVersion))
	}
	return cfg.BaseURL + "/models"
}

func (p *Provider) authHeaders() map[string]string {
	key := p.GetConfig().APIKey
	if p.azure {
		return map[string]string{"api-key": key}
	}
	return map[string]string{"Authorization": "Bearer " + key}
}

// probe lists models to verify reachability and credentials.
func (p *Provider) probe(ctx context.Context) error {
	resp, err := p.DoRequest(ctx, http.MethodGet, p.modelsURL(), nil, p.authHeaders())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var models ModelList
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return &providers.ParseError{Provider: p.GetName(), Cause: fmt.Errorf("failed to decode models list: %w", err)}
	}
	return nil
}

func validateRequest(req *providers.CompletionRequest) error {
	if req == nil {
		return &providers.ValidationError{Field: "request", Message: "request is nil"}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	for i, msg := range req.Messages {
		switch msg.Role {
		case providers.RoleSystem, providers.RoleUser, providers.RoleAssistant:
		default:
			return &providers.ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: fmt.Sprintf("unsupported role %q", msg.Role),
			}
		}
	}
	return nil
}
