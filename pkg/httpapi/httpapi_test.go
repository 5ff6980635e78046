package httpapi

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fortitude-run/fortitude/pkg/auth"
	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/config"
	"github.com/fortitude-run/fortitude/pkg/pipeline"
	"github.com/fortitude-run/fortitude/pkg/providers"
	"github.com/fortitude-run/fortitude/pkg/quality"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

// fakeProvider mirrors pkg/pipeline's test fixture: a minimal
// providers.Provider that answers every query without a real backend.
type fakeProvider struct {
	name    string
	healthy bool
	calls   int64
	answer  string
	err     error
}

func (f *fakeProvider) ResearchQuery(ctx context.Context, text string) (string, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.err != nil {
		return "", f.err
	}
	if f.answer != "" {
		return f.answer, nil
	}
	return "a researched answer with specifics like 12 and a citation: source: docs", nil
}
func (f *fakeProvider) Metadata() providers.Metadata          { return providers.Metadata{Name: f.name} }
func (f *fakeProvider) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeProvider) EstimateCost(text string) providers.CostEstimate {
	return providers.CostEstimate{}
}
func (f *fakeProvider) UsageStats() providers.UsageStats { return providers.UsageStats{} }
func (f *fakeProvider) GetName() string                  { return f.name }
func (f *fakeProvider) GetConfig() providers.Config      { return providers.Config{Name: f.name} }
func (f *fakeProvider) IsHealthy() bool                  { return f.healthy }
func (f *fakeProvider) GetHealth() providers.Health {
	state := providers.HealthUnhealthy
	if f.healthy {
		state = providers.HealthHealthy
	}
	return providers.Health{State: state}
}
func (f *fakeProvider) Close() error { return nil }

type fakeSource struct {
	providers map[string]providers.Provider
}

func (s *fakeSource) GetProviders() map[string]providers.Provider { return s.providers }

// testDeps builds a Server wired to an in-memory store and a single
// healthy fake provider, with auth disabled and rate limiting off, so
// most route tests only exercise handler logic.
func testDeps() Deps {
	store := storage.NewMemoryStore(0)
	prov := &fakeProvider{name: "claude", healthy: true}
	src := &fakeSource{providers: map[string]providers.Provider{"claude": prov}}
	cls := classifier.New(nil)
	pl := pipeline.New(pipeline.Config{ClassifierOptions: classifier.Options{}}, cls, quality.New(), store, src)

	authenticator, err := auth.NewAuthenticator(auth.Config{Disabled: true})
	if err != nil {
		panic(err)
	}

	return Deps{Pipeline: pl, Store: store, Classifier: cls, Authenticator: authenticator}
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxHeaderBytes:  1 << 20,
		RequestDeadline: 5 * time.Second,
	}
}

func newTestServer() *Server {
	return NewServer(testServerConfig(), testDeps())
}
