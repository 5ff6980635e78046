package providers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

var openAIModelPrices = map[string]modelPrice{
	"gpt-4o":      {InputPerMillion: 2.5, OutputPerMillion: 10},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.6},
}

// OpenAIProvider wraps OpenAI's chat completions API, grounded on the
// teacher's providers/openai client: bearer-token auth, a single
// system/user message list, usage reported on the response body rather
// than response headers.
type OpenAIProvider struct {
	*base
}

// NewOpenAIProvider constructs an OpenAI provider.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, &ferrors.ConfigurationError{Component: "openai", Field: "api_key", Message: "api key is required"}
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com"
	}
	if config.KeyValidator != nil {
		if err := config.KeyValidator(config.APIKey); err != nil {
			return nil, &ferrors.ConfigurationError{Component: "openai", Field: "api_key", Message: err.Error()}
		}
	}

	return &OpenAIProvider{base: newBase(config)}, nil
}

func (p *OpenAIProvider) Metadata() Metadata {
	cfg := p.GetConfig()
	return Metadata{
		Name:            cfg.Name,
		Version:         "v1",
		Capabilities:    []string{"research_query"},
		SupportedModels: []string{"gpt-4o", "gpt-4o-mini"},
		ContextLength:   128000,
		Streaming:       false,
		RateLimits:      cfg.RateLimits,
	}
}

func (p *OpenAIProvider) ResearchQuery(ctx context.Context, text string) (string, error) {
	cfg := p.GetConfig()
	inputTokens := estimateTokens(text)

	permit, err := p.limiter.Acquire(inputTokens, inputTokens)
	if err != nil {
		return "", err
	}
	defer permit.Release()

	reqBody, err := json.Marshal(openAIRequest{
		Model:    cfg.Model,
		Messages: []openAIMessage{{Role: "user", Content: text}},
	})
	if err != nil {
		return "", &ferrors.SerializationError{Cause: err}
	}

	headers := map[string]string{"Authorization": "Bearer " + cfg.APIKey}

	started := time.Now()
	body, err := p.withRetry(ctx, func() ([]byte, error) {
		return p.doJSON(ctx, "POST", cfg.BaseURL+"/v1/chat/completions", headers, reqBody)
	})
	latency := time.Since(started)
	if err != nil {
		p.recordFailure(err)
		return "", err
	}

	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.recordFailure(err)
		return "", &ferrors.SerializationError{Cause: err}
	}
	if len(resp.Choices) == 0 {
		err := &ferrors.ProviderError{Provider: cfg.Name, Code: "empty_choices", Message: "response carried no choices", Retryable: false}
		p.recordFailure(err)
		return "", err
	}

	costUSD := modelCost(openAIModelPrices, cfg.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	p.recordSuccess(latency, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, costUSD)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	_, err := p.ResearchQuery(ctx, "ping")
	return err
}

func (p *OpenAIProvider) EstimateCost(text string) CostEstimate {
	cfg := p.GetConfig()
	in := estimateTokens(text)
	out := in / 2
	if out < 1 {
		out = 1
	}
	usd := modelCost(openAIModelPrices, cfg.Model, in, out)
	return CostEstimate{InputTokens: in, OutputTokens: out, USD: &usd}
}

// OpenAIKeyValidator checks OpenAI's documented key prefix.
var OpenAIKeyValidator = keyPrefixValidator("sk-")
