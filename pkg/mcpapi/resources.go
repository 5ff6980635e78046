package mcpapi

import (
	"context"
	"encoding/json"
	"runtime"

	"github.com/fortitude-run/fortitude/pkg/config"
	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// systemMetrics is a minimal runtime snapshot for mcp://fortitude/system/metrics.
// Fortitude-domain counters (cache hit rate, pipeline latency) live in
// pkg/telemetry/metrics and are scraped over Prometheus separately;
// this resource is the lightweight, dependency-free complement an MCP
// client can poll without standing up a scrape target.
type systemMetrics struct {
	Goroutines int    `json:"goroutines"`
	GoVersion  string `json:"go_version"`
}

// ReadResource returns the JSON payload for uri, or a not_found
// ToolError for an unrecognized URI.
func (s *Server) ReadResource(ctx context.Context, uri ResourceURI) (json.RawMessage, error) {
	switch uri {
	case ResourceCacheStatistics:
		stats, err := s.deps.Store.Stats(ctx)
		if err != nil {
			return nil, classifyToolError(err)
		}
		return encodeResult(stats)

	case ResourceConfigCurrent:
		if s.deps.AppConfig == nil {
			return nil, classifyToolError(&ferrors.NotFoundError{Kind: "resource", ID: string(uri)})
		}
		return encodeResult(redactConfig(s.deps.AppConfig, s.deps.Config.RedactSecrets))

	case ResourceSystemMetrics:
		return encodeResult(systemMetrics{
			Goroutines: runtime.NumGoroutine(),
			GoVersion:  runtime.Version(),
		})

	default:
		return nil, classifyToolError(&ferrors.NotFoundError{Kind: "resource", ID: string(uri)})
	}
}

// redactConfig returns a shallow copy of cfg with every secret
// replaced by the literal string "[REDACTED]", per spec.md §6's
// requirement for the config/current resource. When redact is false
// cfg is returned unchanged; config.ApplyDefaults always sets
// RedactSecrets, so this only happens when Deps.Config is built
// directly.
func redactConfig(cfg *config.Config, redact bool) *config.Config {
	if !redact {
		return cfg
	}

	out := *cfg
	out.Auth.SigningKey = redactSecret(cfg.Auth.SigningKey)

	out.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		p.APIKey = redactSecret(p.APIKey)
		out.Providers[name] = p
	}
	return &out
}

func redactSecret(s string) string {
	if s == "" {
		return s
	}
	return "[REDACTED]"
}
