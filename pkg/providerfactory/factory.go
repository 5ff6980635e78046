// Package providerfactory constructs concrete LLM provider instances
// from configuration and tracks their lifecycle behind a name-keyed
// Manager.
package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/providers"
)

// NewProvider creates a provider instance based on config.Type,
// inferring the type from config.Name when Type is empty.
//
// Supported types: "claude", "openai", "gemini", "generic", "claudecode".
func NewProvider(config providers.Config) (providers.Provider, error) {
	providerType := config.Type
	if providerType == "" {
		providerType = inferProviderType(config.Name)
		config.Type = providerType
	}

	slog.Debug("creating provider", "name", config.Name, "type", providerType, "base_url", config.BaseURL)

	var provider providers.Provider
	var err error

	switch providerType {
	case "claude":
		provider, err = providers.NewClaudeProvider(config)
	case "openai":
		provider, err = providers.NewOpenAIProvider(config)
	case "gemini":
		provider, err = providers.NewGeminiProvider(config)
	case "generic":
		provider, err = providers.NewGenericProvider(config)
	case "claudecode":
		provider, err = providers.NewClaudeCodeProvider(config)
	default:
		return nil, &ferrors.ConfigurationError{
			Component: config.Name,
			Field:     "type",
			Message:   fmt.Sprintf("unsupported provider type %q (supported: claude, openai, gemini, generic, claudecode)", providerType),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", config.Name, err)
	}

	slog.Info("provider created", "name", config.Name, "type", providerType)
	return provider, nil
}

// NewProviderWithHealthChecker creates a provider and starts a
// background goroutine that calls HealthCheck on config.HealthCheckInterval
// until ctx is cancelled, keeping the provider's health state current
// even between research queries.
func NewProviderWithHealthChecker(ctx context.Context, config providers.Config) (providers.Provider, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}

	interval := config.HealthCheckInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go runHealthChecker(ctx, provider, interval)

	return provider, nil
}

func runHealthChecker(ctx context.Context, provider providers.Provider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval/2)
			if err := provider.HealthCheck(checkCtx); err != nil {
				slog.Warn("provider health check failed", "provider", provider.GetName(), "error", err)
			}
			cancel()
		}
	}
}

// inferProviderType guesses a provider type from its configured name
// when the caller did not set one explicitly.
func inferProviderType(name string) string {
	switch name {
	case "claude", "anthropic":
		return "claude"
	case "openai":
		return "openai"
	case "gemini":
		return "gemini"
	case "claudecode", "claude-code":
		return "claudecode"
	case "ollama", "lmstudio", "vllm", "localai":
		return "generic"
	default:
		return "generic"
	}
}
