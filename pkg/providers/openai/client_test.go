package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/interviewer/pkg/providers"
)

func TestNewProvider_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  providers.ProviderConfig
		field   string
		wantErr bool
	}{
		{
			name:   "azure ok",
			config: providers.ProviderConfig{Type: providers.TypeAzure, BaseURL: "https://r.openai.azure.com", APIKey: "k", Deployment: "gpt-4o"},
		},
		{
			name:    "azure missing endpoint",
			config:  providers.ProviderConfig{Type: providers.TypeAzure, APIKey: "k", Deployment: "gpt-4o"},
			field:   "base_url",
			wantErr: true,
		},
		{
			name:    "azure missing deployment",
			config:  providers.ProviderConfig{Type: providers.TypeAzure, BaseURL: "https://r.openai.azure.com", APIKey: "k"},
			field:   "deployment",
			wantErr: true,
		},
		{
			name:    "missing key",
			config:  providers.ProviderConfig{Type: providers.TypeOpenAI},
			field:   "api_key",
			wantErr: true,
		},
		{
			name:    "bad url",
			config:  providers.ProviderConfig{Type: providers.TypeOpenAI, BaseURL: "not a url", APIKey: "k"},
			field:   "base_url",
			wantErr: true,
		},
		{
			name:    "unknown type",
			config:  providers.ProviderConfig{Type: "anthropic", APIKey: "k"},
			field:   "type",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				p.Close()
				return
			}

			var cfgErr *providers.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	p, err := NewProvider(providers.ProviderConfig{
		Type:       providers.TypeAzure,
		BaseURL:    "https://r.openai.azure.com/",
		APIKey:     "k",
		Deployment: "gpt-4o",
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer p.Close()

	cfg := p.GetConfig()
	if cfg.APIVersion != DefaultAPIVersion {
		t.Errorf("APIVersion = %q", cfg.APIVersion)
	}
	if cfg.Name != providers.TypeAzure {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}

	want := "https://r.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-05-01-preview"
	if got := p.completionsURL(); got != want {
		t.Errorf("completionsURL = %q, want %q", got, want)
	}
}

func TestStreamCompletion_RejectsInvalidRequest(t *testing.T) {
	p, err := NewProvider(providers.ProviderConfig{Type: providers.TypeOpenAI, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer p.Close()

	for _, req := range []*providers.CompletionRequest{
		nil,
		{},
		{Messages: []providers.Message{{Role: "tool", Content: "x"}}},
	} {
		_, err := p.StreamCompletion(context.Background(), req)
		var ve *providers.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError for %+v, got %v", req, err)
		}
	}
}

func TestHealthCheck_ListsModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/models" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("api-key") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	good := newAzureProviderWithKey(t, server.URL, "good")
	if err := good.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck with valid key: %v", err)
	}

	bad := newAzureProviderWithKey(t, server.URL, "bad")
	var authErr *providers.AuthError
	if err := bad.HealthCheck(context.Background()); !errors.As(err, &authErr) {
		t.Errorf("expected AuthError, got %v", err)
	}
}

func newAzureProviderWithKey(t *testing.T, baseURL, key string) *Provider {
	t.Helper()
	p, err := NewProvider(providers.ProviderConfig{
		Type:       providers.TypeAzure,
		BaseURL:    baseURL,
		APIKey:     key,
		Deployment: "gpt-4o",
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestTransformStreamChunk(t *testing.T) {
	empty := transformStreamChunk(&StreamResponse{})
	if empty.Delta != "" || empty.FinishReason != "" {
		t.Errorf("empty choices = %+v", empty)
	}

	final := transformStreamChunk(&StreamResponse{
		Choices: []StreamChoice{{FinishReason: "length"}},
		Usage:   &ChatUsage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7},
	})
	if final.FinishReason != providers.FinishReasonLength {
		t.Errorf("FinishReason = %q", final.FinishReason)
	}
	if final.Usage == nil || final.Usage.TotalTokens != 7 {
		t.Errorf("Usage = %+v", final.Usage)
	}
}
