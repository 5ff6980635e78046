package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults,
// validates it, and returns it. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from path, then
// applies FORTITUDE_SECTION_FIELD environment variable overrides,
// which always take precedence over file-based configuration, then
// re-validates.
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

// applyEnvOverrides applies FORTITUDE_SECTION_FIELD environment
// variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("FORTITUDE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("FORTITUDE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("FORTITUDE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("FORTITUDE_SERVER_REQUEST_DEADLINE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.RequestDeadline = d
		}
	}

	for name := range cfg.Providers {
		applyProviderEnvOverrides(cfg, name)
	}

	if val := os.Getenv("FORTITUDE_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("FORTITUDE_STORAGE_SQLITE_INDEX_PATH"); val != "" {
		cfg.Storage.SQLite.IndexPath = val
	}
	if val := os.Getenv("FORTITUDE_STORAGE_CAPACITY"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Storage.Capacity = i
		}
	}

	if val := os.Getenv("FORTITUDE_QUALITY_PROFILE"); val != "" {
		cfg.Quality.Profile = val
	}

	if val := os.Getenv("FORTITUDE_LEARNING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Learning.Enabled = b
		}
	}
	if val := os.Getenv("FORTITUDE_LEARNING_LEARNING_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Learning.LearningRate = f
		}
	}

	if val := os.Getenv("FORTITUDE_AUTH_DISABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Auth.Disabled = b
		}
	}
	if val := os.Getenv("FORTITUDE_AUTH_SIGNING_KEY"); val != "" {
		cfg.Auth.SigningKey = val
	}
	if val := os.Getenv("FORTITUDE_AUTH_MAX_REQUESTS_PER_MINUTE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Auth.MaxRequestsPerMinute = i
		}
	}

	if val := os.Getenv("FORTITUDE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("FORTITUDE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("FORTITUDE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("FORTITUDE_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("FORTITUDE_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("FORTITUDE_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	if val := os.Getenv("FORTITUDE_MCP_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.MCP.Enabled = b
		}
	}

	if val := os.Getenv("FORTITUDE_PROACTIVE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Proactive.Enabled = b
		}
	}
}

// applyProviderEnvOverrides applies FORTITUDE_PROVIDERS_<NAME>_<FIELD>
// overrides for one already-registered provider.
func applyProviderEnvOverrides(cfg *Config, providerName string) {
	provider, exists := cfg.Providers[providerName]
	if !exists {
		return
	}

	prefix := fmt.Sprintf("FORTITUDE_PROVIDERS_%s_", strings.ToUpper(providerName))

	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		provider.BaseURL = val
	}
	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		provider.APIKey = val
	}
	if val := os.Getenv(prefix + "MODEL"); val != "" {
		provider.Model = val
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.Timeout = d
		}
	}
	if val := os.Getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			provider.MaxRetries = i
		}
	}

	cfg.Providers[providerName] = provider
}
