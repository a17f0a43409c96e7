// Package providerfactory builds the completion provider from configuration
// and reports its health.
package providerfactory

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/interviewer/pkg/config"
	"mercator-hq/interviewer/pkg/providers"
	"mercator-hq/interviewer/pkg/providers/openai"
)

// ProviderConfig converts the provider section into adapter settings.
//
// An Azure section without an API version falls back to the plain OpenAI
// dialect against the same endpoint.
func ProviderConfig(cfg config.ProviderConfig) providers.ProviderConfig {
	providerType := cfg.Type
	if providerType == "" {
		providerType = providers.TypeAzure
	}
	if providerType == providers.TypeAzure && cfg.APIVersion == "" {
		providerType = providers.TypeOpenAI
	}

	return providers.ProviderConfig{
		Name:                providerType,
		Type:                providerType,
		BaseURL:             cfg.Endpoint,
		APIKey:              cfg.APIKey,
		APIVersion:          cfg.APIVersion,
		Deployment:          cfg.Deployment,
		Timeout:             cfg.Timeout,
		HealthCheckInterval: cfg.HealthCheckInterval,
	}
}

// NewProvider creates the adapter for cfg.
//
// Example:
//
//	provider, err := providerfactory.NewProvider(cfg.Provider)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
func NewProvider(cfg config.ProviderConfig) (providers.Provider, error) {
	pc := ProviderConfig(cfg)

	slog.Debug("creating provider",
		"name", pc.Name,
		"type", pc.Type,
		"base_url", pc.BaseURL,
	)

	switch pc.Type {
	case providers.TypeAzure, providers.TypeOpenAI:
		provider, err := openai.NewProvider(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %q: %w", pc.Name, err)
		}
		return provider, nil
	default:
		return nil, &providers.ConfigError{
			Provider: pc.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: azure, openai)", pc.Type),
		}
	}
}

// NewProviderWithHealthCheck creates the provider and, when
// provider.health_check_interval is set, starts its background health
// checker. ctx stops the checker.
func NewProviderWithHealthCheck(ctx context.Context, cfg config.ProviderConfig) (providers.Provider, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.HealthCheckInterval <= 0 {
		slog.Debug("background health checks disabled", "provider", provider.GetName())
		return provider, nil
	}

	type healthCheckStarter interface {
		StartHealthChecker(context.Context)
	}
	if hcs, ok := provider.(healthCheckStarter); ok {
		hcs.StartHealthChecker(ctx)
	}

	return provider, nil
}
