package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket_Basic(t *testing.T) {
	bucket := NewTokenBucket(10, 10)

	if !bucket.Take(5) {
		t.Fatal("expected to take 5 tokens from a full bucket")
	}
	if remaining := bucket.Remaining(); remaining != 5 {
		t.Errorf("Remaining() = %d, want 5", remaining)
	}
	if !bucket.Take(5) {
		t.Fatal("expected to take the remaining 5 tokens")
	}
	if bucket.Take(1) {
		t.Fatal("expected bucket to be empty")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := NewTokenBucket(10, 10)
	bucket.Take(10)

	time.Sleep(150 * time.Millisecond)

	if !bucket.Take(1) {
		t.Fatal("expected bucket to have refilled after 150ms at 10 tokens/sec")
	}
}

func TestTokenBucket_CapacityLimit(t *testing.T) {
	bucket := NewTokenBucket(10, 10)
	time.Sleep(200 * time.Millisecond)

	if got := bucket.Remaining(); got != 10 {
		t.Errorf("Remaining() = %d, want capped at capacity 10", got)
	}
}

func TestTokenBucket_TimeUntilAvailable(t *testing.T) {
	bucket := NewTokenBucket(10, 10)
	bucket.Take(10)

	d := bucket.TimeUntilAvailable(5)
	if d <= 0 {
		t.Errorf("TimeUntilAvailable(5) = %v, want > 0 for a drained bucket", d)
	}
}

func TestConcurrentLimiter_AcquireRelease(t *testing.T) {
	cl := NewConcurrentLimiter(2)

	if !cl.Acquire() {
		t.Fatal("expected first acquire to succeed")
	}
	if !cl.Acquire() {
		t.Fatal("expected second acquire to succeed")
	}
	if cl.Acquire() {
		t.Fatal("expected third acquire to fail at limit 2")
	}

	cl.Release()
	if !cl.Acquire() {
		t.Fatal("expected acquire to succeed after a release freed a slot")
	}
}
