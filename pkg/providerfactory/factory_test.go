package providerfactory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/providers"
)

func TestNewProvider_Claude(t *testing.T) {
	config := providers.Config{
		Name:    "claude",
		Type:    "claude",
		BaseURL: "https://api.anthropic.com",
		APIKey:  "sk-ant-test-key",
		Timeout: 30 * time.Second,
	}

	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("NewProvider() failed: %v", err)
	}
	defer provider.Close()

	if provider.GetName() != "claude" {
		t.Errorf("expected provider name claude, got %s", provider.GetName())
	}
	if provider.GetConfig().Type != "claude" {
		t.Errorf("expected provider type claude, got %s", provider.GetConfig().Type)
	}
}

func TestNewProvider_Generic(t *testing.T) {
	config := providers.Config{
		Name:    "ollama",
		Type:    "generic",
		BaseURL: "http://localhost:11434",
		Model:   "llama3",
		Timeout: 30 * time.Second,
	}

	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("NewProvider() failed: %v", err)
	}
	defer provider.Close()

	if provider.GetName() != "ollama" {
		t.Errorf("expected provider name ollama, got %s", provider.GetName())
	}
	if provider.GetConfig().Type != "generic" {
		t.Errorf("expected provider type generic, got %s", provider.GetConfig().Type)
	}
}

func TestNewProvider_TypeInference(t *testing.T) {
	tests := []struct {
		name         string
		providerName string
		wantType     string
	}{
		{"claude inferred", "claude", "claude"},
		{"anthropic alias inferred", "anthropic", "claude"},
		{"openai inferred", "openai", "openai"},
		{"gemini inferred", "gemini", "gemini"},
		{"claudecode inferred", "claudecode", "claudecode"},
		{"ollama inferred as generic", "ollama", "generic"},
		{"lmstudio inferred as generic", "lmstudio", "generic"},
		{"vllm inferred as generic", "vllm", "generic"},
		{"unknown inferred as generic", "custom-llm", "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := providers.Config{
				Name:    tt.providerName,
				BaseURL: "http://localhost:8080",
				Model:   "m",
				APIKey:  "test-key",
			}

			provider, err := NewProvider(config)
			if err != nil {
				t.Fatalf("NewProvider() failed: %v", err)
			}
			defer provider.Close()

			if provider.GetConfig().Type != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, provider.GetConfig().Type)
			}
		})
	}
}

func TestNewProvider_UnsupportedType(t *testing.T) {
	config := providers.Config{
		Name:    "test",
		Type:    "unsupported-type",
		BaseURL: "http://localhost:8080",
		APIKey:  "test-key",
	}

	_, err := NewProvider(config)
	if err == nil {
		t.Fatal("expected error for unsupported provider type, got nil")
	}

	var cfgErr *ferrors.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.Field != "type" {
		t.Errorf("expected error for field 'type', got %q", cfgErr.Field)
	}
}

func TestNewProviderWithHealthChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := providers.Config{
		Name:                "claude",
		Type:                "claude",
		BaseURL:             "https://api.anthropic.com",
		APIKey:              "sk-ant-test-key",
		HealthCheckInterval: 1 * time.Second,
	}

	provider, err := NewProviderWithHealthChecker(ctx, config)
	if err != nil {
		t.Fatalf("NewProviderWithHealthChecker() failed: %v", err)
	}
	defer provider.Close()

	if provider.GetName() != "claude" {
		t.Errorf("expected provider name claude, got %s", provider.GetName())
	}
	_ = provider.IsHealthy()
}

func TestInferProviderType(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"claude", "claude"},
		{"anthropic", "claude"},
		{"openai", "openai"},
		{"gemini", "gemini"},
		{"claudecode", "claudecode"},
		{"ollama", "generic"},
		{"lmstudio", "generic"},
		{"vllm", "generic"},
		{"localai", "generic"},
		{"unknown-provider", "generic"},
		{"custom", "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := inferProviderType(tt.name)
			if result != tt.expected {
				t.Errorf("inferProviderType(%q) = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}
