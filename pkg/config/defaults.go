package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultRequestDeadline = 30 * time.Second

	DefaultCORSMaxAge = 3600 // 1 hour

	DefaultProviderTimeout             = 60 * time.Second
	DefaultProviderMaxRetries          = 3
	DefaultProviderHealthCheckInterval = 30 * time.Second
	DefaultProviderRetryInitialDelay   = 500 * time.Millisecond
	DefaultProviderRetryMaxDelay       = 10 * time.Second
	DefaultProviderRetryBackoff        = 2.0
	DefaultProviderRequestsPerMinute   = int64(60)
	DefaultProviderInputTPM            = int64(100000)
	DefaultProviderOutputTPM           = int64(50000)
	DefaultProviderMaxConcurrent       = int64(10)

	DefaultStorageBackend     = "memory"
	DefaultStorageSQLiteIndex = "data/fortitude-cache.db"
	DefaultStorageSQLiteBody  = "data/fortitude-cache"

	DefaultQualityProfile = "default"

	DefaultLearningRate         = 0.05
	DefaultMinFeedbackCount     = 3
	DefaultLearningQueueSize    = 10000
	DefaultLearningRetention    = 90 * 24 * time.Hour

	DefaultAuthIssuer   = "fortitude"
	DefaultAuthTokenTTL = 24 * time.Hour

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultLoggingBuffer = 10000

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "fortitude"
	DefaultMetricsSubsystem = "research"

	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "fortitude"
	DefaultOTLPTimeout        = 10 * time.Second

	DefaultMCPServerName = "fortitude"

	DefaultProactiveSchedule           = "0 */6 * * *"
	DefaultProactiveNotificationBuffer = 100
	DefaultProactiveStaleness          = 7 * 24 * time.Hour
)

// ApplyDefaults fills in zero-valued fields with their defaults. It is
// idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyProviderDefaults(cfg.Providers)
	applyStorageDefaults(&cfg.Storage)
	applyQualityDefaults(&cfg.Quality)
	applyLearningDefaults(&cfg.Learning)
	applyAuthDefaults(&cfg.Auth)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMCPDefaults(&cfg.MCP)
	applyProactiveDefaults(&cfg.Proactive)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
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
	if s.RequestDeadline == 0 {
		s.RequestDeadline = DefaultRequestDeadline
	}

	cors := &s.CORS
	hasAnyConfig := len(cors.AllowedOrigins) > 0 || len(cors.AllowedMethods) > 0 ||
		len(cors.AllowedHeaders) > 0 || len(cors.ExposedHeaders) > 0 || cors.MaxAge > 0
	if !cors.Enabled && !hasAnyConfig {
		cors.Enabled = true
	}
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func applyProviderDefaults(providers map[string]ProviderConfig) {
	for name, p := range providers {
		if p.Timeout == 0 {
			p.Timeout = DefaultProviderTimeout
		}
		if p.MaxRetries == 0 {
			p.MaxRetries = DefaultProviderMaxRetries
		}
		if p.HealthCheckInterval == 0 {
			p.HealthCheckInterval = DefaultProviderHealthCheckInterval
		}
		if p.RetryInitialDelay == 0 {
			p.RetryInitialDelay = DefaultProviderRetryInitialDelay
		}
		if p.RetryMaxDelay == 0 {
			p.RetryMaxDelay = DefaultProviderRetryMaxDelay
		}
		if p.RetryBackoffMultiplier == 0 {
			p.RetryBackoffMultiplier = DefaultProviderRetryBackoff
		}
		if p.RequestsPerMinute == 0 {
			p.RequestsPerMinute = DefaultProviderRequestsPerMinute
		}
		if p.InputTokensPerMinute == 0 {
			p.InputTokensPerMinute = DefaultProviderInputTPM
		}
		if p.OutputTokensPerMinute == 0 {
			p.OutputTokensPerMinute = DefaultProviderOutputTPM
		}
		if p.MaxConcurrent == 0 {
			p.MaxConcurrent = DefaultProviderMaxConcurrent
		}
		providers[name] = p
	}
}

func applyStorageDefaults(s *StorageConfig) {
	if s.Backend == "" {
		s.Backend = DefaultStorageBackend
	}
	if s.SQLite.IndexPath == "" {
		s.SQLite.IndexPath = DefaultStorageSQLiteIndex
	}
	if s.SQLite.BodyDir == "" {
		s.SQLite.BodyDir = DefaultStorageSQLiteBody
	}
	if s.SQLite.MaxOpenConns == 0 {
		s.SQLite.MaxOpenConns = 10
	}
	if s.SQLite.MaxIdleConns == 0 {
		s.SQLite.MaxIdleConns = 5
	}
	if s.SQLite.BusyTimeout == 0 {
		s.SQLite.BusyTimeout = 5 * time.Second
	}
}

func applyQualityDefaults(q *QualityConfig) {
	if q.Profile == "" {
		q.Profile = DefaultQualityProfile
	}
}

func applyLearningDefaults(l *LearningConfig) {
	if l.LearningRate == 0 {
		l.LearningRate = DefaultLearningRate
	}
	if l.MinFeedbackCount == 0 {
		l.MinFeedbackCount = DefaultMinFeedbackCount
	}
	if l.QueueSize == 0 {
		l.QueueSize = DefaultLearningQueueSize
	}
	if l.RetentionInterval == 0 {
		l.RetentionInterval = DefaultLearningRetention
	}
}

func applyAuthDefaults(a *AuthConfig) {
	if a.Issuer == "" {
		a.Issuer = DefaultAuthIssuer
	}
	if a.TokenTTL == 0 {
		a.TokenTTL = DefaultAuthTokenTTL
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}
	if t.Logging.BufferSize == 0 {
		t.Logging.BufferSize = DefaultLoggingBuffer
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.Subsystem == "" {
		t.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.Exporter == "" {
		t.Tracing.Exporter = DefaultTracingExporter
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}

func applyMCPDefaults(m *MCPConfig) {
	if m.ServerName == "" {
		m.ServerName = DefaultMCPServerName
	}
	if !m.RedactSecrets {
		m.RedactSecrets = true
	}
}

func applyProactiveDefaults(p *ProactiveConfig) {
	if p.ScanSchedule == "" {
		p.ScanSchedule = DefaultProactiveSchedule
	}
	if p.NotificationBuffer == 0 {
		p.NotificationBuffer = DefaultProactiveNotificationBuffer
	}
	if p.StalenessThreshold == 0 {
		p.StalenessThreshold = DefaultProactiveStaleness
	}
}
