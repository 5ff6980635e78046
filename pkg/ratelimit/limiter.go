package ratelimit

import (
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// Permit is returned by Acquire and must be released exactly once,
// regardless of whether the call it guarded succeeded.
type Permit struct {
	limiter *Limiter
}

// Release returns the concurrency slot held by the permit.
func (p *Permit) Release() {
	if p != nil && p.limiter != nil {
		p.limiter.concurrency.Release()
	}
}

// Limiter bounds one provider's throughput across three independent
// token-bucket dimensions (requests/min, input tokens/min, output
// tokens/min) plus a concurrency semaphore, matching the provider
// contract's rate-limiting internals. Acquire never blocks: if any
// bucket or the semaphore is exhausted, it fails fast with
// RateLimitExceededError carrying a retry_after computed from the
// deficit of the first exhausted dimension, checked in the order
// requests, input tokens, output tokens.
type Limiter struct {
	requests    *TokenBucket
	inputTokens *TokenBucket
	outputTokens *TokenBucket
	concurrency *ConcurrentLimiter
}

// New builds a Limiter from limits, converting the per-minute rates to
// per-second refill rates.
func New(limits research.RateLimits) *Limiter {
	return &Limiter{
		requests:     NewTokenBucket(limits.RequestsPerMinute, float64(limits.RequestsPerMinute)/60),
		inputTokens:  NewTokenBucket(limits.InputTokensPerMinute, float64(limits.InputTokensPerMinute)/60),
		outputTokens: NewTokenBucket(limits.OutputTokensPerMinute, float64(limits.OutputTokensPerMinute)/60),
		concurrency:  NewConcurrentLimiter(limits.MaxConcurrent),
	}
}

// Acquire takes one request token, inputTokens input-token tokens, and
// an optimistic estimatedOutputTokens output-token tokens, plus a
// concurrency slot. On any shortfall it releases the concurrency slot
// and returns RateLimitExceededError; tokens already taken from buckets
// checked before the exhausted one are not returned. On success the caller must
// Release the returned Permit when the request completes.
func (l *Limiter) Acquire(inputTokens, estimatedOutputTokens int64) (*Permit, error) {
	if !l.concurrency.Acquire() {
		return nil, &ferrors.RateLimitExceededError{
			RetryAfter: 100 * time.Millisecond,
			Message:    "max_concurrent requests in flight",
		}
	}

	if !l.requests.Take(1) {
		l.concurrency.Release()
		return nil, l.exceeded(l.requests, 1, "requests_per_minute")
	}

	if !l.inputTokens.Take(inputTokens) {
		l.concurrency.Release()
		return nil, l.exceeded(l.inputTokens, inputTokens, "input_tokens_per_minute")
	}

	if !l.outputTokens.Take(estimatedOutputTokens) {
		l.concurrency.Release()
		return nil, l.exceeded(l.outputTokens, estimatedOutputTokens, "output_tokens_per_minute")
	}

	return &Permit{limiter: l}, nil
}

func (l *Limiter) exceeded(b *TokenBucket, want int64, dimension string) error {
	return &ferrors.RateLimitExceededError{
		RetryAfter:        b.TimeUntilAvailable(want),
		RequestsRemaining: requestsRemainingPtr(l, dimension),
		Message:           dimension + " exhausted",
	}
}

func requestsRemainingPtr(l *Limiter, dimension string) *int64 {
	if dimension != "requests_per_minute" {
		return nil
	}
	r := l.requests.Remaining()
	return &r
}

// Snapshot reports the current state of every dimension, used for
// X-RateLimit-* response headers and health/metrics reporting.
type Snapshot struct {
	RequestsRemaining     int64
	InputTokensRemaining  int64
	OutputTokensRemaining int64
	ConcurrentInFlight    int64
	ConcurrentLimit       int64
}

// Snapshot returns the limiter's current counters without mutating them.
func (l *Limiter) Snapshot() Snapshot {
	return Snapshot{
		RequestsRemaining:     l.requests.Remaining(),
		InputTokensRemaining:  l.inputTokens.Remaining(),
		OutputTokensRemaining: l.outputTokens.Remaining(),
		ConcurrentInFlight:    l.concurrency.Current(),
		ConcurrentLimit:       l.concurrency.Limit(),
	}
}
