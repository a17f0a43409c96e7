package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values and validates the result. An empty path yields
// the defaults. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file (or the
// defaults when path is empty) and applies environment variable overrides.
// Environment variables always take precedence over the file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Provider: Azure SDK names first, INTERVIEWER_PROVIDER_* second.
	envString("AZURE_OPENAI_ENDPOINT", &cfg.Provider.Endpoint)
	envString("AZURE_OPENAI_API_KEY", &cfg.Provider.APIKey)
	envString("AZURE_OPENAI_API_VERSION", &cfg.Provider.APIVersion)
	envString("AZURE_OPENAI_DEPLOYMENT", &cfg.Provider.Deployment)
	envString("INTERVIEWER_PROVIDER_TYPE", &cfg.Provider.Type)
	envString("INTERVIEWER_PROVIDER_MODEL", &cfg.Provider.Model)
	envDuration("INTERVIEWER_PROVIDER_TIMEOUT", &cfg.Provider.Timeout)
	envDuration("INTERVIEWER_PROVIDER_HEALTH_CHECK_INTERVAL", &cfg.Provider.HealthCheckInterval)

	// Server
	envString("INTERVIEWER_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("INTERVIEWER_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("INTERVIEWER_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("INTERVIEWER_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envString("INTERVIEWER_SERVER_STATIC_DIR", &cfg.Server.StaticDir)
	if val := os.Getenv("INTERVIEWER_SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(val)
	}

	// Relay
	envString("INTERVIEWER_RELAY_PERSONA", &cfg.Relay.Persona)
	envString("INTERVIEWER_RELAY_ERROR_MESSAGE", &cfg.Relay.ErrorMessage)
	envInt("INTERVIEWER_RELAY_MAX_TURNS", &cfg.Relay.MaxTurns)

	// Telemetry
	envString("INTERVIEWER_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("INTERVIEWER_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envString("INTERVIEWER_TELEMETRY_LOGGING_FILE_PATH", &cfg.Telemetry.Logging.File.Path)
	envBoolPtr("INTERVIEWER_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envBool("INTERVIEWER_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("INTERVIEWER_TELEMETRY_TRACING_EXPORTER", &cfg.Telemetry.Tracing.Exporter)
	envString("INTERVIEWER_TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)

	// Audit
	envBool("INTERVIEWER_AUDIT_ENABLED", &cfg.Audit.Enabled)
	envString("INTERVIEWER_AUDIT_BACKEND", &cfg.Audit.Backend)
	envString("INTERVIEWER_AUDIT_SQLITE_DRIVER", &cfg.Audit.SQLite.Driver)
	envString("INTERVIEWER_AUDIT_SQLITE_PATH", &cfg.Audit.SQLite.Path)
	envInt("INTERVIEWER_AUDIT_RETENTION_DAYS", &cfg.Audit.Retention.Days)

	// Client
	envString("INTERVIEWER_CLIENT_RELAY_URL", &cfg.Client.RelayURL)
	envInt("INTERVIEWER_CLIENT_WORD_WRAP", &cfg.Client.WordWrap)
	envString("INTERVIEWER_CLIENT_STYLE", &cfg.Client.Style)
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envDuration(key string, dst *time.Duration) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("ignoring invalid duration override", "env", key, "value", val)
		return
	}
	*dst = d
}

func envInt(key string, dst *int) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("ignoring invalid integer override", "env", key, "value", val)
		return
	}
	*dst = n
}

func envBool(key string, dst *bool) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		slog.Warn("ignoring invalid boolean override", "env", key, "value", val)
		return
	}
	*dst = b
}

func envBoolPtr(key string, dst **bool) {
	var b bool
	if os.Getenv(key) == "" {
		return
	}
	if existing := *dst; existing != nil {
		b = *existing
	}
	envBool(key, &b)
	*dst = &b
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
