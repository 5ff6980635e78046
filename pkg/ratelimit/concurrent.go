package ratelimit

import "sync/atomic"

// ConcurrentLimiter is a lock-free counting semaphore bounding
// simultaneous in-flight requests to one provider.
type ConcurrentLimiter struct {
	limit   int64
	current int64
}

// NewConcurrentLimiter creates a limiter allowing up to limit
// simultaneous acquisitions.
func NewConcurrentLimiter(limit int64) *ConcurrentLimiter {
	return &ConcurrentLimiter{limit: limit}
}

// Acquire attempts to take a slot. On true, the caller must call
// Release when done.
func (cl *ConcurrentLimiter) Acquire() bool {
	current := atomic.AddInt64(&cl.current, 1)
	if current > cl.limit {
		atomic.AddInt64(&cl.current, -1)
		return false
	}
	return true
}

// Release returns a slot taken by a successful Acquire.
func (cl *ConcurrentLimiter) Release() {
	atomic.AddInt64(&cl.current, -1)
}

// Current returns the number of in-flight acquisitions.
func (cl *ConcurrentLimiter) Current() int64 { return atomic.LoadInt64(&cl.current) }

// Limit returns the configured concurrency limit.
func (cl *ConcurrentLimiter) Limit() int64 { return atomic.LoadInt64(&cl.limit) }

// Remaining returns the number of free slots.
func (cl *ConcurrentLimiter) Remaining() int64 {
	r := cl.limit - atomic.LoadInt64(&cl.current)
	if r < 0 {
		return 0
	}
	return r
}

// Reset clears the in-flight count. Use only in tests or error recovery.
func (cl *ConcurrentLimiter) Reset() { atomic.StoreInt64(&cl.current, 0) }
