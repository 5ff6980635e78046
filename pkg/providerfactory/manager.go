package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fortitude-run/fortitude/pkg/providers"
)

// Manager owns a name-keyed collection of providers and their
// lifecycle: construction with an attached health checker, lookup,
// health-filtered selection, and shutdown.
type Manager struct {
	providers map[string]providers.Provider
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewManager creates an empty provider manager.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		providers: make(map[string]providers.Provider),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// AddProvider constructs and registers a provider under config.Name,
// closing and replacing any provider already registered under that name.
func (m *Manager) AddProvider(config providers.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.providers[config.Name]; ok {
		slog.Warn("replacing existing provider", "name", config.Name)
		existing.Close()
		delete(m.providers, config.Name)
	}

	provider, err := NewProviderWithHealthChecker(m.ctx, config)
	if err != nil {
		return fmt.Errorf("failed to add provider %q: %w", config.Name, err)
	}

	m.providers[config.Name] = provider
	slog.Info("provider added to manager", "name", config.Name, "total_providers", len(m.providers))
	return nil
}

// RemoveProvider closes and deregisters the named provider.
func (m *Manager) RemoveProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	provider, ok := m.providers[name]
	if !ok {
		return fmt.Errorf("provider %q not found", name)
	}
	if err := provider.Close(); err != nil {
		slog.Error("error closing provider", "name", name, "error", err)
	}
	delete(m.providers, name)
	slog.Info("provider removed from manager", "name", name, "remaining_providers", len(m.providers))
	return nil
}

// GetProvider returns the named provider.
func (m *Manager) GetProvider(name string) (providers.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provider, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not found", name)
	}
	return provider, nil
}

// GetProviders returns a snapshot copy of every registered provider.
func (m *Manager) GetProviders() map[string]providers.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]providers.Provider, len(m.providers))
	for name, provider := range m.providers {
		out[name] = provider
	}
	return out
}

// GetProviderNames lists every registered provider name.
func (m *Manager) GetProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}

// GetHealthyProviders returns the subset of providers currently healthy.
func (m *Manager) GetHealthyProviders() map[string]providers.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	healthy := make(map[string]providers.Provider)
	for name, provider := range m.providers {
		if provider.IsHealthy() {
			healthy[name] = provider
		}
	}
	return healthy
}

// ProviderCount returns the total number of registered providers.
func (m *Manager) ProviderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.providers)
}

// HealthyProviderCount returns the number of currently healthy providers.
func (m *Manager) HealthyProviderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, provider := range m.providers {
		if provider.IsHealthy() {
			count++
		}
	}
	return count
}

// LoadFromConfig adds every provider in configs, collecting (rather
// than stopping on) individual failures.
func (m *Manager) LoadFromConfig(configs []providers.Config) error {
	var failed int
	for _, config := range configs {
		if err := m.AddProvider(config); err != nil {
			failed++
			slog.Error("failed to load provider", "name", config.Name, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to load %d of %d provider(s)", failed, len(configs))
	}
	slog.Info("all providers loaded successfully", "count", len(configs))
	return nil
}

// Close stops every health checker and closes every provider.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel()

	var failures []string
	for name, provider := range m.providers {
		if err := provider.Close(); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
		}
	}
	m.providers = make(map[string]providers.Provider)

	if len(failures) > 0 {
		return fmt.Errorf("errors closing providers: %v", failures)
	}
	slog.Info("provider manager closed")
	return nil
}

// HealthSummary reports aggregate provider health across the manager.
type HealthSummary struct {
	Total     int
	Healthy   int
	Unhealthy int
	Details   map[string]providers.Health
}

// GetHealthSummary builds a HealthSummary from the current provider set.
func (m *Manager) GetHealthSummary() HealthSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := HealthSummary{
		Total:   len(m.providers),
		Details: make(map[string]providers.Health, len(m.providers)),
	}
	for name, provider := range m.providers {
		health := provider.GetHealth()
		summary.Details[name] = health
		if provider.IsHealthy() {
			summary.Healthy++
		}
	}
	summary.Unhealthy = summary.Total - summary.Healthy
	return summary
}
