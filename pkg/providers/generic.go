package providers

import "github.com/fortitude-run/fortitude/pkg/ferrors"

// GenericProvider wraps any OpenAI-compatible backend (Ollama, vLLM,
// LM Studio, a self-hosted gateway) behind a configurable base URL and
// an optional API key, the way the teacher's providers/generic package
// reuses the OpenAI adapter rather than duplicating its transform.
type GenericProvider struct {
	*OpenAIProvider
}

// NewGenericProvider constructs a generic OpenAI-compatible provider.
// APIKey is optional: self-hosted backends commonly run without one.
func NewGenericProvider(config Config) (*GenericProvider, error) {
	if config.BaseURL == "" {
		return nil, &ferrors.ConfigurationError{Component: "generic", Field: "base_url", Message: "base_url is required for a generic provider"}
	}
	if config.APIKey == "" {
		config.APIKey = "not-required"
	}
	if config.Model == "" {
		return nil, &ferrors.ConfigurationError{Component: "generic", Field: "model", Message: "model is required for a generic provider"}
	}

	openaiProvider, err := NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	return &GenericProvider{OpenAIProvider: openaiProvider}, nil
}
