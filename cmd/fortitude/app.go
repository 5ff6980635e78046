package main

import (
	"fmt"
	"log/slog"

	"github.com/fortitude-run/fortitude/pkg/auth"
	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/config"
	"github.com/fortitude-run/fortitude/pkg/mcpapi"
	"github.com/fortitude-run/fortitude/pkg/pipeline"
	"github.com/fortitude-run/fortitude/pkg/proactive"
	"github.com/fortitude-run/fortitude/pkg/providerfactory"
	"github.com/fortitude-run/fortitude/pkg/providers"
	"github.com/fortitude-run/fortitude/pkg/quality"
	"github.com/fortitude-run/fortitude/pkg/storage"
	"github.com/fortitude-run/fortitude/pkg/telemetry/metrics"
)

// app bundles the components most subcommands need: a loaded config,
// a storage backend, a provider manager, and a ready-to-use pipeline.
// Commands that only touch storage (list, cache-status, search,
// cleanup) can ignore Pipeline/Providers/Authenticator and Close just
// the store. proactive is nil unless cfg.Proactive.Enabled; mcp is
// always built since it's a cheap in-process dispatch table with no
// transport of its own to start or stop.
type app struct {
	cfg           *config.Config
	store         storage.Backend
	providers     *providerfactory.Manager
	classify      *classifier.Classifier
	pipeline      *pipeline.Pipeline
	authenticator *auth.Authenticator
	proactive     *proactive.Supervisor
	mcp           *mcpapi.Server
	metrics       *metrics.Collector
}

// newApp loads configuration from cfgFile and wires every component a
// CLI command might need, mirroring the teacher's run.go bootstrap but
// building an in-process pipeline rather than an HTTP server.
func newApp() (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	store, err := buildStore(&cfg.Storage)
	if err != nil {
		return nil, cli.NewCommandError("init", fmt.Errorf("failed to build storage backend: %w", err))
	}

	manager := providerfactory.NewManager()
	providerConfigs := make([]providers.Config, 0, len(cfg.Providers))
	for name, providerCfg := range cfg.Providers {
		providerConfigs = append(providerConfigs, providerCfg.ToProviderConfig(name))
	}
	if len(providerConfigs) > 0 {
		if err := manager.LoadFromConfig(providerConfigs); err != nil {
			// Collected per-provider failures are non-fatal: a CLI
			// invocation that only reads the cache (list, search)
			// doesn't need a single provider to succeed.
			fmt.Printf("warning: %v\n", err)
		}
	}

	cls := classifier.New(nil)
	weights := quality.WeightsForProfile(quality.Profile(cfg.Quality.Profile))
	qualityEngine := quality.New()

	pl := pipeline.New(pipeline.Config{
		ClassifierOptions: classifier.Options{EnableAdvanced: true, EnableContextDetection: true},
		QualityWeights:    weights,
		Deadline:          cfg.Server.RequestDeadline,
	}, cls, qualityEngine, store, manager)

	authenticator, err := auth.NewAuthenticator(auth.Config{
		Disabled:             cfg.Auth.Disabled,
		SigningKey:           cfg.Auth.SigningKey,
		Issuer:               cfg.Auth.Issuer,
		MaxRequestsPerMinute: cfg.Auth.MaxRequestsPerMinute,
	})
	if err != nil {
		return nil, cli.NewCommandError("init", fmt.Errorf("failed to build authenticator: %w", err))
	}

	var supervisor *proactive.Supervisor
	if cfg.Proactive.Enabled {
		executor := proactive.NewStoreExecutor(store, nil)
		supervisor = proactive.NewSupervisor(cfg.Proactive, executor, slog.Default())
	}

	var metricsCollector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		metricsCollector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		pl.SetMetrics(metricsCollector)
		authenticator.SetMetrics(metricsCollector)
	}

	mcp := mcpapi.NewServer(mcpapi.Deps{
		Pipeline:      pl,
		Store:         store,
		Classifier:    cls,
		Authenticator: authenticator,
		Proactive:     supervisor,
		Config:        cfg.MCP,
		AppConfig:     cfg,
	})

	return &app{
		cfg:           cfg,
		store:         store,
		providers:     manager,
		classify:      cls,
		pipeline:      pl,
		authenticator: authenticator,
		proactive:     supervisor,
		mcp:           mcp,
		metrics:       metricsCollector,
	}, nil
}

func buildStore(cfg *config.StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(&storage.SQLiteConfig{
			IndexPath:    cfg.SQLite.IndexPath,
			BodyDir:      cfg.SQLite.BodyDir,
			Capacity:     cfg.Capacity,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	case "memory", "":
		return storage.NewMemoryStore(cfg.Capacity), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// Close releases the store and every provider's resources, stopping
// the proactive supervisor first if it was started.
func (a *app) Close() {
	if a.proactive != nil {
		a.proactive.Stop()
	}
	if a.providers != nil {
		a.providers.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
