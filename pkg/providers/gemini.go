package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int64 `json:"promptTokenCount"`
	CandidatesTokenCount int64 `json:"candidatesTokenCount"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate   `json:"candidates"`
	UsageMetadata geminiUsageMetadata `json:"usageMetadata"`
}

var geminiModelPrices = map[string]modelPrice{
	"gemini-1.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 5},
	"gemini-1.5-flash": {InputPerMillion: 0.075, OutputPerMillion: 0.3},
}

// GeminiProvider wraps Google's generateContent API. The request shape
// (contents/parts instead of a flat messages array, API key carried as
// a query parameter rather than a header) differs enough from the
// Claude/OpenAI drivers to warrant its own transform, in the same
// hand-rolled-net/http style as the other two.
type GeminiProvider struct {
	*base
}

// NewGeminiProvider constructs a Gemini provider.
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, &ferrors.ConfigurationError{Component: "gemini", Field: "api_key", Message: "api key is required"}
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.KeyValidator != nil {
		if err := config.KeyValidator(config.APIKey); err != nil {
			return nil, &ferrors.ConfigurationError{Component: "gemini", Field: "api_key", Message: err.Error()}
		}
	}

	return &GeminiProvider{base: newBase(config)}, nil
}

func (p *GeminiProvider) Metadata() Metadata {
	cfg := p.GetConfig()
	return Metadata{
		Name:            cfg.Name,
		Version:         "v1beta",
		Capabilities:    []string{"research_query"},
		SupportedModels: []string{"gemini-1.5-pro", "gemini-1.5-flash"},
		ContextLength:   1000000,
		Streaming:       false,
		RateLimits:      cfg.RateLimits,
	}
}

func (p *GeminiProvider) ResearchQuery(ctx context.Context, text string) (string, error) {
	cfg := p.GetConfig()
	inputTokens := estimateTokens(text)

	permit, err := p.limiter.Acquire(inputTokens, inputTokens)
	if err != nil {
		return "", err
	}
	defer permit.Release()

	reqBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
	})
	if err != nil {
		return "", &ferrors.SerializationError{Cause: err}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", cfg.BaseURL, cfg.Model, cfg.APIKey)

	started := time.Now()
	body, err := p.withRetry(ctx, func() ([]byte, error) {
		return p.doJSON(ctx, "POST", url, nil, reqBody)
	})
	latency := time.Since(started)
	if err != nil {
		p.recordFailure(err)
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.recordFailure(err)
		return "", &ferrors.SerializationError{Cause: err}
	}
	if len(resp.Candidates) == 0 {
		err := &ferrors.ProviderError{Provider: cfg.Name, Code: "empty_candidates", Message: "response carried no candidates", Retryable: false}
		p.recordFailure(err)
		return "", err
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		answer.WriteString(part.Text)
	}

	costUSD := modelCost(geminiModelPrices, cfg.Model, resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount)
	p.recordSuccess(latency, resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount, costUSD)

	return answer.String(), nil
}

func (p *GeminiProvider) HealthCheck(ctx context.Context) error {
	_, err := p.ResearchQuery(ctx, "ping")
	return err
}

func (p *GeminiProvider) EstimateCost(text string) CostEstimate {
	cfg := p.GetConfig()
	in := estimateTokens(text)
	out := in / 2
	if out < 1 {
		out = 1
	}
	usd := modelCost(geminiModelPrices, cfg.Model, in, out)
	return CostEstimate{InputTokens: in, OutputTokens: out, USD: &usd}
}

// GeminiKeyValidator checks Google AI Studio's documented key prefix.
var GeminiKeyValidator = keyPrefixValidator("AIza")
