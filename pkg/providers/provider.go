// Package providers presents a uniform contract over heterogeneous LLM
// backends (Claude-style, OpenAI-style, Gemini-style, and a
// Claude-Code-tool fallback), each wrapping its own token-bucket rate
// limiter, retry policy, cost accounting, and health tracking behind
// the shared Provider interface.
package providers

import "context"

// Provider is implemented by every concrete LLM backend adapter.
//
// All methods accept a context.Context for cancellation; implementations
// must respect cancellation rather than blocking indefinitely.
type Provider interface {
	// ResearchQuery sends text to the backend and returns its answer.
	// Implements the provider's own retry-with-backoff internally,
	// retrying only errors the shared taxonomy marks retryable.
	ResearchQuery(ctx context.Context, text string) (string, error)

	// Metadata describes the provider's static capabilities.
	Metadata() Metadata

	// HealthCheck performs an on-demand health probe.
	HealthCheck(ctx context.Context) error

	// EstimateCost is a pure, fast estimate using per-model unit prices;
	// it never calls the backend.
	EstimateCost(text string) CostEstimate

	// UsageStats returns cumulative counters and a moving average
	// response time over the last N requests.
	UsageStats() UsageStats

	// GetName returns the provider's configured name.
	GetName() string

	// GetConfig returns the provider's configuration.
	GetConfig() Config

	// IsHealthy reports the provider's last-known health state.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() Health

	// Close releases any held resources (HTTP connections, etc.).
	Close() error
}
