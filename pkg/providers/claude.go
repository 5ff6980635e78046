package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// claudeMessage is one turn in an Anthropic Messages API request.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type claudeUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	ID         string               `json:"id"`
	Model      string               `json:"model"`
	StopReason string               `json:"stop_reason"`
	Content    []claudeContentBlock `json:"content"`
	Usage      claudeUsage          `json:"usage"`
}

var claudeModelPrices = map[string]modelPrice{
	"claude-3-5-sonnet-20241022": {InputPerMillion: 3, OutputPerMillion: 15},
	"claude-3-5-haiku-20241022":  {InputPerMillion: 0.8, OutputPerMillion: 4},
	"claude-3-opus-20240229":     {InputPerMillion: 15, OutputPerMillion: 75},
}

// ClaudeProvider wraps Anthropic's Messages API, grounded on the
// teacher's providers/anthropic client: x-api-key/anthropic-version
// headers, system prompt carried as a top-level field rather than a
// message, content returned as a list of typed blocks.
type ClaudeProvider struct {
	*base
}

const anthropicVersion = "2023-06-01"

// NewClaudeProvider constructs a Claude provider, validating the API
// key's expected "sk-ant-" prefix via config.KeyValidator when set.
func NewClaudeProvider(config Config) (*ClaudeProvider, error) {
	if config.APIKey == "" {
		return nil, &ferrors.ConfigurationError{Component: "claude", Field: "api_key", Message: "api key is required"}
	}
	if config.Model == "" {
		config.Model = "claude-3-5-sonnet-20241022"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	if config.KeyValidator != nil {
		if err := config.KeyValidator(config.APIKey); err != nil {
			return nil, &ferrors.ConfigurationError{Component: "claude", Field: "api_key", Message: err.Error()}
		}
	}

	return &ClaudeProvider{base: newBase(config)}, nil
}

func (p *ClaudeProvider) Metadata() Metadata {
	cfg := p.GetConfig()
	return Metadata{
		Name:            cfg.Name,
		Version:         anthropicVersion,
		Capabilities:    []string{"research_query"},
		SupportedModels: []string{"claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022", "claude-3-opus-20240229"},
		ContextLength:   200000,
		Streaming:       false,
		RateLimits:      cfg.RateLimits,
	}
}

func (p *ClaudeProvider) ResearchQuery(ctx context.Context, text string) (string, error) {
	cfg := p.GetConfig()
	inputTokens := estimateTokens(text)

	permit, err := p.limiter.Acquire(inputTokens, inputTokens)
	if err != nil {
		return "", err
	}
	defer permit.Release()

	reqBody, err := json.Marshal(claudeRequest{
		Model:     cfg.Model,
		Messages:  []claudeMessage{{Role: "user", Content: text}},
		MaxTokens: 4096,
	})
	if err != nil {
		return "", &ferrors.SerializationError{Cause: err}
	}

	headers := map[string]string{
		"x-api-key":         cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	started := time.Now()
	body, err := p.withRetry(ctx, func() ([]byte, error) {
		return p.doJSON(ctx, "POST", cfg.BaseURL+"/v1/messages", headers, reqBody)
	})
	latency := time.Since(started)
	if err != nil {
		p.recordFailure(err)
		return "", err
	}

	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.recordFailure(err)
		return "", &ferrors.SerializationError{Cause: err}
	}

	var answer strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer.WriteString(block.Text)
		}
	}

	costUSD := modelCost(claudeModelPrices, cfg.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	p.recordSuccess(latency, resp.Usage.InputTokens, resp.Usage.OutputTokens, costUSD)

	return answer.String(), nil
}

func (p *ClaudeProvider) HealthCheck(ctx context.Context) error {
	_, err := p.ResearchQuery(ctx, "ping")
	return err
}

func (p *ClaudeProvider) EstimateCost(text string) CostEstimate {
	cfg := p.GetConfig()
	in := estimateTokens(text)
	out := in / 2
	if out < 1 {
		out = 1
	}
	usd := modelCost(claudeModelPrices, cfg.Model, in, out)
	return CostEstimate{InputTokens: in, OutputTokens: out, USD: &usd}
}

func modelCost(prices map[string]modelPrice, model string, inputTokens, outputTokens int64) float64 {
	price, ok := prices[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1_000_000*price.InputPerMillion +
		float64(outputTokens)/1_000_000*price.OutputPerMillion
}

func keyPrefixValidator(prefix string) func(string) error {
	return func(apiKey string) error {
		if !strings.HasPrefix(apiKey, prefix) {
			return fmt.Errorf("api key must start with %q", prefix)
		}
		return nil
	}
}

// ClaudeKeyValidator checks Anthropic's documented key prefix.
var ClaudeKeyValidator = keyPrefixValidator("sk-ant-")
