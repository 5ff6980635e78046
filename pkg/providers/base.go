package providers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/ratelimit"
	"github.com/fortitude-run/fortitude/pkg/research"
)

const responseTimeSamples = 20

// base is the shared implementation embedded by every concrete
// provider adapter: connection-pooled HTTP client, the three-bucket
// rate limiter, retry-with-backoff, health tracking, and usage stats.
// Grounded on the teacher's HTTPProvider (pkg/providers/http_provider.go),
// generalized with a ratelimit.Limiter in front of every request and
// cost/usage accounting on top.
type base struct {
	config  Config
	client  *http.Client
	limiter *ratelimit.Limiter

	mu                  sync.Mutex
	health              Health
	responseTimes       []time.Duration
	responseTimesCursor int
	totalInputTokens    int64
	totalOutputTokens   int64
	totalCostUSD        float64
}

func newBase(config Config) *base {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &base{
		config: config,
		client: &http.Client{Transport: transport, Timeout: config.Timeout},
		limiter: ratelimit.New(config.RateLimits),
		health: Health{
			State:                 HealthHealthy,
			LastCheck:             time.Now(),
			LastSuccessfulRequest: time.Now(),
		},
	}
}

func (b *base) GetName() string   { return b.config.Name }
func (b *base) GetConfig() Config { return b.config }

func (b *base) IsHealthy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.health.State != HealthUnhealthy
}

func (b *base) GetHealth() Health {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.health
}

func (b *base) UsageStats() UsageStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sum time.Duration
	var n int
	for _, d := range b.responseTimes {
		if d > 0 {
			sum += d
			n++
		}
	}
	var avg time.Duration
	if n > 0 {
		avg = sum / time.Duration(n)
	}

	return UsageStats{
		TotalRequests:       b.health.TotalRequests,
		TotalInputTokens:    b.totalInputTokens,
		TotalOutputTokens:   b.totalOutputTokens,
		TotalCostUSD:        b.totalCostUSD,
		AverageResponseTime: avg,
	}
}

func (b *base) recordSuccess(latency time.Duration, inputTokens, outputTokens int64, costUSD float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.health.TotalRequests++
	b.health.ConsecutiveFailures = 0
	b.health.State = HealthHealthy
	b.health.Reason = ""
	b.health.LastCheck = time.Now()
	b.health.LastSuccessfulRequest = time.Now()

	b.totalInputTokens += inputTokens
	b.totalOutputTokens += outputTokens
	b.totalCostUSD += costUSD

	if len(b.responseTimes) < responseTimeSamples {
		b.responseTimes = append(b.responseTimes, latency)
	} else {
		b.responseTimes[b.responseTimesCursor] = latency
		b.responseTimesCursor = (b.responseTimesCursor + 1) % responseTimeSamples
	}
}

func (b *base) recordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.health.TotalRequests++
	b.health.FailedRequests++
	b.health.ConsecutiveFailures++
	b.health.LastCheck = time.Now()
	b.health.Reason = err.Error()

	switch {
	case b.health.ConsecutiveFailures >= 3:
		b.health.State = HealthUnhealthy
	case b.health.ConsecutiveFailures >= 1:
		b.health.State = HealthDegraded
	}
}

func (b *base) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// doJSON performs one HTTP round trip with the provider's retry policy
// and rate limiter already applied by the caller, returning the raw
// response body on a 2xx and a mapped ferrors error otherwise.
func (b *base) doJSON(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &ferrors.SerializationError{Cause: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &ferrors.TimeoutError{After: b.config.Timeout}
		}
		return nil, &ferrors.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ferrors.SerializationError{Cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	return nil, mapHTTPError(b.config.Name, resp.StatusCode, string(respBody), resp.Header.Get("Retry-After"))
}

// withRetry runs op up to config.MaxRetries additional times,
// exponential-backoff-with-full-jitter between attempts, stopping as
// soon as op succeeds or returns a non-retryable error. Grounded on
// the spec's retry formula: min(max_delay, initial*multiplier^n).
func (b *base) withRetry(ctx context.Context, op func() ([]byte, error)) ([]byte, error) {
	policy := b.config.Retry
	if policy.MaxRetries == 0 && policy.InitialDelay == 0 {
		policy = research.RetryPolicy{MaxRetries: b.config.MaxRetries, InitialDelay: time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2, Jitter: true}
	}

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(policy, attempt)
			slog.Debug("retrying provider request", "provider", b.config.Name, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, &ferrors.TimeoutError{After: b.config.Timeout}
			case <-time.After(delay):
			}
		}

		body, err := op()
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !ferrors.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func backoffDelay(policy research.RetryPolicy, attempt int) time.Duration {
	delay := float64(policy.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= policy.BackoffMultiplier
	}
	if maxDelay := float64(policy.MaxDelay); maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	if policy.Jitter {
		delay = rand.Float64() * delay
	}
	return time.Duration(delay)
}
