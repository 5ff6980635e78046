package config

import (
	"time"

	"github.com/fortitude-run/fortitude/pkg/providers"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// Config is the root configuration structure for Fortitude: the HTTP
// server, the research provider set, the cache backend, the quality
// and learning engines, authentication, telemetry, and the MCP and
// proactive-research surfaces.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts, the per-request pipeline deadline, and CORS.
	Server ServerConfig `yaml:"server"`

	// Providers contains configuration for all research provider
	// integrations. Keys are provider names (e.g. "claude", "gpt4").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Storage contains cache backend configuration.
	Storage StorageConfig `yaml:"storage"`

	// Quality contains quality-scoring weight configuration.
	Quality QualityConfig `yaml:"quality"`

	// Learning contains the feedback-loop engine's configuration.
	Learning LearningConfig `yaml:"learning"`

	// Auth contains token issuance, verification, and rate-limiting
	// configuration.
	Auth AuthConfig `yaml:"auth"`

	// Telemetry contains configuration for observability: logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// MCP contains configuration for the MCP tool/resource surface.
	MCP MCPConfig `yaml:"mcp"`

	// Proactive contains configuration for the background research
	// supervisor: file watching, scheduled gap scans, and
	// notifications.
	Proactive ProactiveConfig `yaml:"proactive"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes
	// of the response. Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is how long to wait for the next request when
	// keep-alives are enabled. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// RequestDeadline bounds one pipeline.Process call end to end
	// (classify, cache lookup, dispatch, score, persist).
	// Zero means the request context's own deadline governs.
	// Default: 30s
	RequestDeadline time.Duration `yaml:"request_deadline"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	MaxAge           int      `yaml:"max_age"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// ProviderConfig contains configuration for a single research
// provider. ToProviderConfig converts it to the providers.Config the
// provider factory expects.
type ProviderConfig struct {
	// Type selects the driver: "claude", "gpt4", "perplexity",
	// "claudecode", or another registered provider type.
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`

	Timeout             time.Duration `yaml:"timeout"`
	MaxRetries          int           `yaml:"max_retries"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`

	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`

	RequestsPerMinute     int64 `yaml:"requests_per_minute"`
	InputTokensPerMinute  int64 `yaml:"input_tokens_per_minute"`
	OutputTokensPerMinute int64 `yaml:"output_tokens_per_minute"`
	MaxConcurrent         int64 `yaml:"max_concurrent"`

	RetryInitialDelay      time.Duration `yaml:"retry_initial_delay"`
	RetryMaxDelay          time.Duration `yaml:"retry_max_delay"`
	RetryBackoffMultiplier float64       `yaml:"retry_backoff_multiplier"`
	RetryJitter            bool          `yaml:"retry_jitter"`

	// Command and Args configure the claudecode driver, which shells
	// out to a local CLI instead of calling an HTTP API.
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// ToProviderConfig builds the providers.Config the provider factory
// consumes, filling in name from the map key it was read from.
func (p ProviderConfig) ToProviderConfig(name string) providers.Config {
	return providers.Config{
		Name:                name,
		Type:                p.Type,
		BaseURL:             p.BaseURL,
		APIKey:              p.APIKey,
		Model:               p.Model,
		Timeout:             p.Timeout,
		MaxRetries:          p.MaxRetries,
		HealthCheckInterval: p.HealthCheckInterval,
		MaxIdleConns:        p.MaxIdleConns,
		MaxIdleConnsPerHost: p.MaxIdleConnsPerHost,
		IdleConnTimeout:     p.IdleConnTimeout,
		RateLimits: research.RateLimits{
			RequestsPerMinute:     p.RequestsPerMinute,
			InputTokensPerMinute:  p.InputTokensPerMinute,
			OutputTokensPerMinute: p.OutputTokensPerMinute,
			MaxConcurrent:         p.MaxConcurrent,
		},
		Retry: research.RetryPolicy{
			MaxRetries:        p.MaxRetries,
			InitialDelay:      p.RetryInitialDelay,
			MaxDelay:          p.RetryMaxDelay,
			BackoffMultiplier: p.RetryBackoffMultiplier,
			Jitter:            p.RetryJitter,
		},
		Command: p.Command,
		Args:    p.Args,
	}
}

// StorageConfig selects and configures the cache backend.
type StorageConfig struct {
	// Backend selects the cache implementation.
	// Options: "memory", "sqlite". Default: "memory"
	Backend string `yaml:"backend"`

	// Capacity bounds total cached body bytes before Cleanup evicts
	// the oldest entries. Zero means unbounded.
	Capacity int64 `yaml:"capacity"`

	// SQLite configures the durable backend. Only used when Backend
	// is "sqlite".
	SQLite StorageSQLiteConfig `yaml:"sqlite"`
}

// StorageSQLiteConfig mirrors storage.SQLiteConfig.
type StorageSQLiteConfig struct {
	IndexPath    string        `yaml:"index_path"`
	BodyDir      string        `yaml:"body_dir"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	WALMode      bool          `yaml:"wal_mode"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// QualityConfig selects the weight profile the quality engine scores
// answers against.
type QualityConfig struct {
	// Profile selects a named weight preset.
	// Options: "default", "research_optimized", "technical", "learning"
	// Default: "default"
	Profile string `yaml:"profile"`

	// CustomWeights, if non-empty, overrides the selected profile's
	// per-dimension weights before normalization. Keys are
	// research.QualityDimension values (e.g. "accuracy", "relevance").
	CustomWeights map[string]float64 `yaml:"custom_weights,omitempty"`
}

// LearningConfig mirrors learning.Config.
type LearningConfig struct {
	// Enabled controls whether the feedback loop runs at all.
	// ApplyDefaults leaves it unchanged, so it is false unless set.
	Enabled bool `yaml:"enabled"`

	LearningRate      float64       `yaml:"learning_rate"`
	MinFeedbackCount  int           `yaml:"min_feedback_count"`
	Conservative      bool          `yaml:"conservative"`
	QueueSize         int           `yaml:"queue_size"`
	AnonymizeUserData bool          `yaml:"anonymize_user_data"`
	RetentionInterval time.Duration `yaml:"retention_interval"`
}

// AuthConfig mirrors auth.Config.
type AuthConfig struct {
	// Disabled turns the authenticator into a pass-through that
	// grants every permission to every caller.
	Disabled bool `yaml:"disabled"`

	SigningKey string        `yaml:"signing_key"`
	Issuer     string        `yaml:"issuer"`
	TokenTTL   time.Duration `yaml:"token_ttl"`

	// MaxRequestsPerMinute bounds each client identity's request
	// rate. Zero disables rate limiting.
	MaxRequestsPerMinute int64 `yaml:"max_requests_per_minute"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration. Its fields mirror
// pkg/telemetry/logging.Config, which is a separate type; the serve
// command reads only Level, for its JSON slog handler.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level"`

	// Format controls output encoding.
	// Options: "json", "text", "console". Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic PII redaction in logs.
	// ApplyDefaults leaves it unchanged, so it is false unless set.
	RedactPII bool `yaml:"redact_pii"`

	// BufferSize is the size of the async log buffer.
	// Default: 10000
	BufferSize int `yaml:"buffer_size"`

	// RedactPatterns contains custom PII redaction patterns, applied
	// in addition to the built-in set.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom PII redaction pattern.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains distributed tracing configuration, consumed
// directly by pkg/telemetry/tracing.New.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampler: "always", "never", "ratio". Default: "ratio"
	Sampler     string  `yaml:"sampler"`
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter: "otlp", "jaeger", "zipkin". Default: "otlp".
	// Validation accepts all three, but tracing.New returns an error for
	// "jaeger" and "zipkin"; only "otlp" has a working exporter.
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`

	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	Insecure bool          `yaml:"insecure"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MCPConfig configures the MCP tool/resource surface.
type MCPConfig struct {
	// Enabled controls whether the MCP server starts.
	Enabled bool `yaml:"enabled"`

	// ServerName identifies this server to MCP clients.
	// Default: "fortitude"
	ServerName string `yaml:"server_name"`

	// RedactSecrets replaces API keys and signing keys with
	// "[REDACTED]" in any resource payload, per spec §6.
	// ApplyDefaults sets it to true whenever it is false, so a loaded
	// configuration always has it enabled.
	RedactSecrets bool `yaml:"redact_secrets"`
}

// ProactiveConfig configures the background research supervisor.
type ProactiveConfig struct {
	// Enabled controls whether the proactive supervisor starts.
	Enabled bool `yaml:"enabled"`

	// WatchPaths are directories watched for documentation/code
	// changes that may make cached research stale.
	WatchPaths []string `yaml:"watch_paths"`

	// ScanSchedule is a cron expression (robfig/cron/v3 syntax)
	// controlling how often the gap-detection scan runs.
	// Default: "0 */6 * * *" (every six hours)
	ScanSchedule string `yaml:"scan_schedule"`

	// NotificationBuffer bounds the pending-notification queue.
	// Default: 100
	NotificationBuffer int `yaml:"notification_buffer"`

	// StalenessThreshold is how old a cached result may get before
	// the supervisor flags it for re-research.
	// Default: 168h (one week)
	StalenessThreshold time.Duration `yaml:"staleness_threshold"`
}
