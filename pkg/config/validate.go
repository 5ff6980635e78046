package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific
// configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found while validating a
// Config.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the full configuration and returns a
// ValidationError collecting every problem found, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateQuality(&cfg.Quality)...)
	errs = append(errs, validateLearning(&cfg.Learning)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateProactive(&cfg.Proactive)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError
	if s.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "listen address is required"})
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must be non-negative"})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must be non-negative"})
	}
	if s.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{"server.max_header_bytes", "must be non-negative"})
	}
	if s.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{"server.max_header_bytes", "exceeds reasonable limit (10MB)"})
	}
	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError
	if len(providers) == 0 {
		errs = append(errs, FieldError{"providers", "at least one provider must be configured"})
		return errs
	}
	for name, p := range providers {
		prefix := fmt.Sprintf("providers.%s", name)
		if p.Type == "" {
			errs = append(errs, FieldError{prefix + ".type", "type is required"})
		}
		if p.BaseURL != "" {
			if _, err := url.Parse(p.BaseURL); err != nil {
				errs = append(errs, FieldError{prefix + ".base_url", fmt.Sprintf("invalid URL: %v", err)})
			}
		}
		if p.Timeout < 0 {
			errs = append(errs, FieldError{prefix + ".timeout", "must be non-negative"})
		}
		if p.MaxRetries < 0 {
			errs = append(errs, FieldError{prefix + ".max_retries", "must be non-negative"})
		}
		if p.MaxRetries > 10 {
			errs = append(errs, FieldError{prefix + ".max_retries", "exceeds reasonable limit (10)"})
		}
	}
	return errs
}

func validateStorage(s *StorageConfig) []FieldError {
	var errs []FieldError
	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if s.Backend == "" {
		errs = append(errs, FieldError{"storage.backend", "backend is required"})
	} else if !validBackends[s.Backend] {
		errs = append(errs, FieldError{"storage.backend", fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", s.Backend)})
	}
	if s.Backend == "sqlite" && s.SQLite.IndexPath == "" {
		errs = append(errs, FieldError{"storage.sqlite.index_path", "required when backend is 'sqlite'"})
	}
	if s.Capacity < 0 {
		errs = append(errs, FieldError{"storage.capacity", "must be non-negative"})
	}
	return errs
}

func validateQuality(q *QualityConfig) []FieldError {
	var errs []FieldError
	validProfiles := map[string]bool{"default": true, "research_optimized": true, "technical": true, "learning": true}
	if q.Profile != "" && !validProfiles[q.Profile] {
		errs = append(errs, FieldError{"quality.profile", fmt.Sprintf("invalid profile %q", q.Profile)})
	}
	for dim, weight := range q.CustomWeights {
		if weight < 0 {
			errs = append(errs, FieldError{"quality.custom_weights." + dim, "weight must be non-negative"})
		}
	}
	return errs
}

func validateLearning(l *LearningConfig) []FieldError {
	var errs []FieldError
	if !l.Enabled {
		return errs
	}
	if l.LearningRate < 0 || l.LearningRate > 1.0 {
		errs = append(errs, FieldError{"learning.learning_rate", "must be between 0.0 and 1.0"})
	}
	if l.MinFeedbackCount < 0 {
		errs = append(errs, FieldError{"learning.min_feedback_count", "must be non-negative"})
	}
	if l.QueueSize <= 0 {
		errs = append(errs, FieldError{"learning.queue_size", "must be positive"})
	}
	return errs
}

func validateAuth(a *AuthConfig) []FieldError {
	var errs []FieldError
	if a.Disabled {
		return errs
	}
	if a.SigningKey == "" {
		errs = append(errs, FieldError{"auth.signing_key", "signing key is required unless auth is disabled"})
	}
	if a.MaxRequestsPerMinute < 0 {
		errs = append(errs, FieldError{"auth.max_requests_per_minute", "must be non-negative"})
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if t.Logging.Level == "" {
		errs = append(errs, FieldError{"telemetry.logging.level", "level is required"})
	} else if !validLevels[t.Logging.Level] {
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("invalid level %q", t.Logging.Level)})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if t.Logging.Format == "" {
		errs = append(errs, FieldError{"telemetry.logging.format", "format is required"})
	} else if !validFormats[t.Logging.Format] {
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("invalid format %q", t.Logging.Format)})
	}

	if t.Metrics.Enabled && t.Metrics.Path == "" {
		errs = append(errs, FieldError{"telemetry.metrics.path", "required when metrics are enabled"})
	}

	if t.Tracing.Enabled {
		if t.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{"telemetry.tracing.endpoint", "required when tracing is enabled"})
		}
		validExporters := map[string]bool{"otlp": true, "jaeger": true, "zipkin": true}
		if !validExporters[t.Tracing.Exporter] {
			errs = append(errs, FieldError{"telemetry.tracing.exporter", fmt.Sprintf("invalid exporter %q", t.Tracing.Exporter)})
		}
	}
	if t.Tracing.SampleRatio < 0 || t.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{"telemetry.tracing.sample_ratio", "must be between 0.0 and 1.0"})
	}

	return errs
}

func validateProactive(p *ProactiveConfig) []FieldError {
	var errs []FieldError
	if !p.Enabled {
		return errs
	}
	if p.ScanSchedule == "" {
		errs = append(errs, FieldError{"proactive.scan_schedule", "required when proactive mode is enabled"})
	}
	if p.NotificationBuffer <= 0 {
		errs = append(errs, FieldError{"proactive.notification_buffer", "must be positive"})
	}
	return errs
}
