package mcpapi

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/fortitude-run/fortitude/pkg/auth"
	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/config"
	"github.com/fortitude-run/fortitude/pkg/pipeline"
	"github.com/fortitude-run/fortitude/pkg/providers"
	"github.com/fortitude-run/fortitude/pkg/quality"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

// fakeProvider mirrors pkg/httpapi's and pkg/pipeline's test fixture.
type fakeProvider struct {
	name    string
	healthy bool
	calls   int64
}

func (f *fakeProvider) ResearchQuery(ctx context.Context, text string) (string, error) {
	atomic.AddInt64(&f.calls, 1)
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

type fakeSource struct{ providers map[string]providers.Provider }

func (s *fakeSource) GetProviders() map[string]providers.Provider { return s.providers }

func testServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStore(0)
	prov := &fakeProvider{name: "claude", healthy: true}
	src := &fakeSource{providers: map[string]providers.Provider{"claude": prov}}
	cls := classifier.New(nil)
	pl := pipeline.New(pipeline.Config{ClassifierOptions: classifier.Options{}}, cls, quality.New(), store, src)

	authenticator, err := auth.NewAuthenticator(auth.Config{Disabled: true})
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	return NewServer(Deps{
		Pipeline:      pl,
		Store:         store,
		Classifier:    cls,
		Authenticator: authenticator,
		Config:        config.MCPConfig{ServerName: "fortitude", RedactSecrets: true},
		AppConfig: &config.Config{
			Auth: config.AuthConfig{SigningKey: "super-secret-signing-key"},
			Providers: map[string]config.ProviderConfig{
				"claude": {Type: "claude", APIKey: "sk-test-key"},
			},
		},
	})
}

func dispatch(t *testing.T, s *Server, name ToolName, args any) (json.RawMessage, error) {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	return s.Dispatch(context.Background(), name, raw, "", "test-client")
}
