package config

import "testing"

func TestApplyDefaults_ServerDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if !cfg.Server.CORS.Enabled {
		t.Error("expected CORS to default to enabled when unconfigured")
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		t.Error("expected default CORS allowed origins")
	}
}

func TestApplyDefaults_CORSExplicitlyDisabledStaysDisabled(t *testing.T) {
	cfg := &Config{}
	cfg.Server.CORS.AllowedOrigins = []string{"https://example.com"}
	ApplyDefaults(cfg)

	if cfg.Server.CORS.Enabled {
		t.Error("expected CORS to remain disabled when caller already configured it")
	}
}

func TestApplyDefaults_ProviderDefaults(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"claude": {Type: "claude"},
		},
	}
	ApplyDefaults(cfg)

	p := cfg.Providers["claude"]
	if p.Timeout != DefaultProviderTimeout {
		t.Errorf("Timeout = %v, want %v", p.Timeout, DefaultProviderTimeout)
	}
	if p.MaxRetries != DefaultProviderMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", p.MaxRetries, DefaultProviderMaxRetries)
	}
	if p.RequestsPerMinute != DefaultProviderRequestsPerMinute {
		t.Errorf("RequestsPerMinute = %d, want %d", p.RequestsPerMinute, DefaultProviderRequestsPerMinute)
	}
}

func TestApplyDefaults_ProviderExplicitValuesPreserved(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"claude": {Type: "claude", MaxRetries: 7},
		},
	}
	ApplyDefaults(cfg)

	if cfg.Providers["claude"].MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want preserved 7", cfg.Providers["claude"].MaxRetries)
	}
}

func TestApplyDefaults_StorageDefaultsToMemory(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Storage.Backend != DefaultStorageBackend {
		t.Errorf("Backend = %q, want %q", cfg.Storage.Backend, DefaultStorageBackend)
	}
	if cfg.Storage.SQLite.IndexPath != DefaultStorageSQLiteIndex {
		t.Errorf("SQLite.IndexPath = %q, want %q", cfg.Storage.SQLite.IndexPath, DefaultStorageSQLiteIndex)
	}
}

func TestApplyDefaults_LearningDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Learning.LearningRate != DefaultLearningRate {
		t.Errorf("LearningRate = %v, want %v", cfg.Learning.LearningRate, DefaultLearningRate)
	}
	if cfg.Learning.QueueSize != DefaultLearningQueueSize {
		t.Errorf("QueueSize = %d, want %d", cfg.Learning.QueueSize, DefaultLearningQueueSize)
	}
}

func TestApplyDefaults_AuthDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Auth.Issuer != DefaultAuthIssuer {
		t.Errorf("Issuer = %q, want %q", cfg.Auth.Issuer, DefaultAuthIssuer)
	}
	if cfg.Auth.TokenTTL != DefaultAuthTokenTTL {
		t.Errorf("TokenTTL = %v, want %v", cfg.Auth.TokenTTL, DefaultAuthTokenTTL)
	}
}

func TestApplyDefaults_TelemetryDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, DefaultLoggingLevel)
	}
	if cfg.Telemetry.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Telemetry.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if cfg.Telemetry.Tracing.Sampler != DefaultTracingSampler {
		t.Errorf("Tracing.Sampler = %q, want %q", cfg.Telemetry.Tracing.Sampler, DefaultTracingSampler)
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout != DefaultOTLPTimeout {
		t.Errorf("Tracing.OTLP.Timeout = %v, want %v", cfg.Telemetry.Tracing.OTLP.Timeout, DefaultOTLPTimeout)
	}
}

func TestApplyDefaults_ProactiveDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Proactive.ScanSchedule != DefaultProactiveSchedule {
		t.Errorf("ScanSchedule = %q, want %q", cfg.Proactive.ScanSchedule, DefaultProactiveSchedule)
	}
	if cfg.Proactive.NotificationBuffer != DefaultProactiveNotificationBuffer {
		t.Errorf("NotificationBuffer = %d, want %d", cfg.Proactive.NotificationBuffer, DefaultProactiveNotificationBuffer)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{"claude": {Type: "claude"}},
	}
	ApplyDefaults(cfg)
	first := *cfg

	ApplyDefaults(cfg)
	if cfg.Server.ListenAddress != first.Server.ListenAddress {
		t.Error("ApplyDefaults is not idempotent for Server.ListenAddress")
	}
	if cfg.Telemetry.Tracing.SampleRatio != first.Telemetry.Tracing.SampleRatio {
		t.Error("ApplyDefaults is not idempotent for Telemetry.Tracing.SampleRatio")
	}
}
