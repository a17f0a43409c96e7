package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Server contains HTTP server configuration for the relay.
	Server ServerConfig `yaml:"server"`

	// Provider contains the completion provider connection settings.
	Provider ProviderConfig `yaml:"provider"`

	// Relay contains the relay behaviour: persona and client-visible errors.
	Relay RelayConfig `yaml:"relay"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit contains the relay audit log settings.
	Audit AuditConfig `yaml:"audit"`

	// Client contains settings for the terminal chat client.
	Client ClientConfig `yaml:"client"`
}

// ServerConfig contains configuration for the relay HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Relay responses are long-lived event streams, so the default
	// is no timeout.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the request line and headers. The transcript
	// travels in the query string, so this also bounds its size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// StaticDir is an optional directory served at "/" (the browser bundle).
	// Default: "" (disabled)
	StaticDir string `yaml:"static_dir"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are sent.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins. ["*"] allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed methods.
	// Default: ["GET", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	// Default: ["Content-Type", "X-Request-ID", "Last-Event-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders lists headers visible to browser scripts.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// IsEnabled reports whether CORS is enabled, defaulting to true.
func (c CORSConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ProviderConfig contains the completion provider connection settings.
type ProviderConfig struct {
	// Type selects the API dialect: "azure" or "openai".
	// Default: "azure"
	Type string `yaml:"type"`

	// Endpoint is the Azure resource endpoint or the OpenAI base URL.
	// Env: AZURE_OPENAI_ENDPOINT
	Endpoint string `yaml:"endpoint"`

	// APIKey authenticates against the provider.
	// Env: AZURE_OPENAI_API_KEY
	APIKey string `yaml:"api_key"`

	// APIVersion is the Azure api-version query parameter.
	// Default: "2024-05-01-preview"
	APIVersion string `yaml:"api_version"`

	// Deployment is the Azure deployment name.
	// Default: "gpt-4o"
	Deployment string `yaml:"deployment"`

	// Model is the model identifier sent in the request body.
	// Default: "gpt-4o"
	Model string `yaml:"model"`

	// Timeout bounds the wait for the provider's response headers.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// HealthCheckInterval is how often /ready probes the provider.
	// Zero disables background probing.
	// Default: 0
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

// RelayConfig contains relay behaviour.
type RelayConfig struct {
	// Persona is the system instruction prepended to every transcript.
	// Default: "You are an interviewer for a tech job position"
	Persona string `yaml:"persona"`

	// ErrorMessage is the generic text sent in the in-band error event.
	// Default: "An error occurred"
	ErrorMessage string `yaml:"error_message"`

	// MaxTurns caps the number of client turns accepted per request.
	// Zero means unlimited.
	// Default: 0
	MaxTurns int `yaml:"max_turns"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks API keys and bearer tokens in log attributes.
	// Default: true
	RedactSecrets *bool `yaml:"redact_secrets"`

	// File, when Path is set, also writes logs to a rotating file.
	File LogFileConfig `yaml:"file"`
}

// ShouldRedact reports whether secret redaction is on, defaulting to true.
func (c LoggingConfig) ShouldRedact() bool {
	return c.RedactSecrets == nil || *c.RedactSecrets
}

// LogFileConfig configures a size-rotated log file.
type LogFileConfig struct {
	// Path is the log file path. Empty disables file output.
	Path string `yaml:"path"`

	// MaxSizeMB is the size at which the file is rotated.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep.
	// Default: 3
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays is how long rotated files are kept.
	// Default: 28
	MaxAgeDays int `yaml:"max_age_days"`

	// Compress gzips rotated files.
	// Default: false
	Compress bool `yaml:"compress"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "interviewer"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are histogram buckets in seconds for stream duration.
	// Default: [0.5, 1, 2.5, 5, 10, 20, 30, 60, 120]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// IsEnabled reports whether metrics are enabled, defaulting to true.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is the sampling strategy: "always", "never", "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter is "stdout" (pretty JSON to File or stdout) or "otlp".
	// Default: "stdout"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// File is where the stdout exporter writes. Empty means stdout.
	// The file is size-rotated.
	File string `yaml:"file"`

	// ServiceName is the service.name resource attribute.
	// Default: "interviewer"
	ServiceName string `yaml:"service_name"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the liveness probe path.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness probe path.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the build information path.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// AuditConfig configures the relay audit log. Records hold request
// metadata and counts only, never turn contents.
type AuditConfig struct {
	// Enabled controls whether audit records are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend is "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite storage settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the capacity of the recorder queue.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention controls pruning of old records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite settings.
type SQLiteConfig struct {
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to keep records. 0 keeps them forever.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a standard 5-field cron expression.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// ClientConfig contains settings for the terminal chat client.
type ClientConfig struct {
	// RelayURL is the base URL of the relay.
	// Default: "http://localhost:3000"
	RelayURL string `yaml:"relay_url"`

	// WordWrap is the markdown render width.
	// Default: 80
	WordWrap int `yaml:"word_wrap"`

	// Style is the glamour style: "auto", "dark", "light", "notty".
	// Default: "auto"
	Style string `yaml:"style"`
}
