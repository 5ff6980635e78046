package providers

import (
	"time"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// Config configures a single provider instance.
type Config struct {
	Name    string
	Type    string
	BaseURL string
	APIKey  string
	Model   string

	Timeout             time.Duration
	MaxRetries          int
	HealthCheckInterval time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	RateLimits research.RateLimits
	Retry      research.RetryPolicy

	// KeyValidator, if set, checks APIKey's format at construction time.
	// Left nil to skip validation (e.g. self-hosted generic backends
	// with no fixed key format).
	KeyValidator research.KeyValidator

	// Command is the executable invoked by the claudecode driver.
	// Unused by the HTTP-backed drivers.
	Command string
	Args    []string
}

// HealthState is the coarse-grained health of a provider.
type HealthState string

const (
	HealthHealthy   HealthState = "healthy"
	HealthDegraded  HealthState = "degraded"
	HealthUnhealthy HealthState = "unhealthy"
)

// Health tracks a provider's health status over time.
type Health struct {
	State                 HealthState
	Reason                string
	LastCheck             time.Time
	ConsecutiveFailures   int
	LastSuccessfulRequest time.Time
	TotalRequests         int64
	FailedRequests        int64
}

// Metadata describes a provider's static capabilities.
type Metadata struct {
	Name            string
	Version         string
	Capabilities    []string
	SupportedModels []string
	ContextLength   int
	Streaming       bool
	RateLimits      research.RateLimits
}

// CostEstimate is a pure, fast cost projection for one query.
type CostEstimate struct {
	InputTokens  int64
	OutputTokens int64
	Duration     time.Duration
	USD          *float64
}

// UsageStats are the cumulative counters and moving-average latency
// exposed by UsageStats().
type UsageStats struct {
	TotalRequests       int64
	TotalInputTokens    int64
	TotalOutputTokens   int64
	TotalCostUSD        float64
	AverageResponseTime time.Duration
}

// modelPrice holds the per-million-token USD price for one model, used
// by EstimateCost.
type modelPrice struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// estimateTokens is a crude tokens-per-character heuristic, matching
// the order of magnitude real tokenizers produce for English prose
// without requiring a tokenizer dependency for a pure estimate.
func estimateTokens(text string) int64 {
	const charsPerToken = 4
	n := int64(len(text)) / charsPerToken
	if n < 1 {
		return 1
	}
	return n
}
