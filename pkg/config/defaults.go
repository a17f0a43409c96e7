package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:3000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 0
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
	DefaultCORSMaxAge      = 3600

	DefaultProviderType    = "azure"
	DefaultAPIVersion      = "2024-05-01-preview"
	DefaultDeployment      = "gpt-4o"
	DefaultModel           = "gpt-4o"
	DefaultProviderTimeout = 60 * time.Second

	DefaultPersona      = "You are an interviewer for a tech job position"
	DefaultErrorMessage = "An error occurred"

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "interviewer"

	DefaultTracingSampler  = "always"
	DefaultTracingExporter = "stdout"
	DefaultTracingEndpoint = "localhost:4317"
	DefaultServiceName     = "interviewer"

	DefaultLivenessPath  = "/health"
	DefaultReadinessPath = "/ready"
	DefaultVersionPath   = "/version"
	DefaultCheckTimeout  = 5 * time.Second

	DefaultAuditBackend      = "sqlite"
	DefaultSQLiteDriver      = "sqlite"
	DefaultSQLitePath        = "data/audit.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultAuditBuffer       = 1000
	DefaultAuditWriteTimeout = 5 * time.Second
	DefaultRetentionDays     = 30
	DefaultPruneSchedule     = "0 3 * * *"

	DefaultRelayURL = "http://localhost:3000"
	DefaultWordWrap = 80
	DefaultStyle    = "auto"
)

// DefaultDurationBuckets are the stream duration histogram buckets in seconds.
var DefaultDurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Explicitly set values are left untouched.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyProviderDefaults(&cfg.Provider)
	applyRelayDefaults(&cfg.Relay)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyAuditDefaults(&cfg.Audit)
	applyClientDefaults(&cfg.Client)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	c := &s.CORS
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "X-Request-ID", "Last-Event-ID"}
	}
	if len(c.ExposedHeaders) == 0 {
		c.ExposedHeaders = []string{"X-Request-ID"}
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}

func applyProviderDefaults(p *ProviderConfig) {
	if p.Type == "" {
		p.Type = DefaultProviderType
	}
	if p.Type == DefaultProviderType && p.APIVersion == "" {
		p.APIVersion = DefaultAPIVersion
	}
	if p.Deployment == "" {
		p.Deployment = DefaultDeployment
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultProviderTimeout
	}
}

func applyRelayDefaults(r *RelayConfig) {
	if r.Persona == "" {
		r.Persona = DefaultPersona
	}
	if r.ErrorMessage == "" {
		r.ErrorMessage = DefaultErrorMessage
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	l := &t.Logging
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if l.Format == "" {
		l.Format = DefaultLogFormat
	}
	if l.File.MaxSizeMB == 0 {
		l.File.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if l.File.MaxBackups == 0 {
		l.File.MaxBackups = DefaultLogMaxBackups
	}
	if l.File.MaxAgeDays == 0 {
		l.File.MaxAgeDays = DefaultLogMaxAgeDays
	}

	m := &t.Metrics
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if len(m.DurationBuckets) == 0 {
		m.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	tr := &t.Tracing
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = 1.0
	}
	if tr.Exporter == "" {
		tr.Exporter = DefaultTracingExporter
	}
	if tr.Endpoint == "" {
		tr.Endpoint = DefaultTracingEndpoint
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultServiceName
	}

	h := &t.Health
	if h.LivenessPath == "" {
		h.LivenessPath = DefaultLivenessPath
	}
	if h.ReadinessPath == "" {
		h.ReadinessPath = DefaultReadinessPath
	}
	if h.VersionPath == "" {
		h.VersionPath = DefaultVersionPath
	}
	if h.CheckTimeout == 0 {
		h.CheckTimeout = DefaultCheckTimeout
	}
}

func applyAuditDefaults(a *AuditConfig) {
	if a.Backend == "" {
		a.Backend = DefaultAuditBackend
	}
	if a.SQLite.Driver == "" {
		a.SQLite.Driver = DefaultSQLiteDriver
	}
	if a.SQLite.Path == "" {
		a.SQLite.Path = DefaultSQLitePath
	}
	if a.SQLite.BusyTimeout == 0 {
		a.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if a.AsyncBuffer == 0 {
		a.AsyncBuffer = DefaultAuditBuffer
	}
	if a.WriteTimeout == 0 {
		a.WriteTimeout = DefaultAuditWriteTimeout
	}
	if a.Retention.Days == 0 {
		a.Retention.Days = DefaultRetentionDays
	}
	if a.Retention.PruneSchedule == "" {
		a.Retention.PruneSchedule = DefaultPruneSchedule
	}
}

func applyClientDefaults(c *ClientConfig) {
	if c.RelayURL == "" {
		c.RelayURL = DefaultRelayURL
	}
	if c.WordWrap == 0 {
		c.WordWrap = DefaultWordWrap
	}
	if c.Style == "" {
		c.Style = DefaultStyle
	}
}
