package auth

import (
	"sync"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/ratelimit"
	"github.com/fortitude-run/fortitude/pkg/research"
	"github.com/fortitude-run/fortitude/pkg/telemetry/metrics"
)

// Config configures the Authenticator.
type Config struct {
	// Disabled turns the authenticator into a pass-through that grants
	// every permission to every caller, per spec §4.7's "auth globally
	// disabled" mode.
	Disabled bool

	// SigningKey and Issuer configure the underlying Issuer, which is
	// built with the one-hour default token TTL.
	SigningKey string
	Issuer     string

	// MaxRequestsPerMinute bounds each client identity's request rate.
	// Admin tokens are exempt from the permission check but not from
	// this limit, per spec §4.7.
	MaxRequestsPerMinute int64
}

// Authenticator wraps an Issuer with per-route permission checks and
// per-client-identity rate limiting.
type Authenticator struct {
	cfg     Config
	issuer  *Issuer
	metrics *metrics.Collector

	mu       sync.Mutex
	limiters map[string]*ratelimit.TokenBucket
}

// SetMetrics wires a metrics collector into the authenticator.
// Optional — every Collector method is nil-safe, so an Authenticator
// with none set simply records nothing.
func (a *Authenticator) SetMetrics(m *metrics.Collector) {
	a.metrics = m
}

// NewAuthenticator builds an Authenticator. When cfg.Disabled is set,
// SigningKey may be empty since no token is ever parsed.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	a := &Authenticator{cfg: cfg, limiters: make(map[string]*ratelimit.TokenBucket)}
	if cfg.Disabled {
		return a, nil
	}
	issuer, err := NewIssuer(cfg.SigningKey, cfg.Issuer, 0)
	if err != nil {
		return nil, err
	}
	a.issuer = issuer
	return a, nil
}

// Issuer exposes the underlying token issuer for token-minting
// callers (e.g. a CLI login command or test fixture). Returns nil
// when auth is disabled.
func (a *Authenticator) Issuer() *Issuer { return a.issuer }

// RateLimitStatus reports the caller's remaining request budget for
// the current window, used to populate X-RateLimit-* response
// headers.
type RateLimitStatus struct {
	Limit     int64
	Remaining int64
}

// Authenticate verifies authorizationHeader (the raw "Authorization"
// header value, possibly empty), enforces clientIdentity's rate
// limit, and checks the decoded token carries required. admin implies
// every permission and additionally bypasses the per-route permission
// check, but never bypasses rate limiting.
func (a *Authenticator) Authenticate(authorizationHeader, clientIdentity string, required research.Permission) (*research.AuthToken, *RateLimitStatus, error) {
	var status *RateLimitStatus
	if a.cfg.MaxRequestsPerMinute > 0 {
		bucket := a.bucketFor(clientIdentity)
		if !bucket.Take(1) {
			a.metrics.RecordRateLimitRejection(clientIdentity)
			return nil, nil, &ferrors.RateLimitExceededError{
				RetryAfter: bucket.TimeUntilAvailable(1),
				Message:    "client request rate exceeded",
			}
		}
		status = &RateLimitStatus{Limit: a.cfg.MaxRequestsPerMinute, Remaining: bucket.Remaining()}
	}

	if a.cfg.Disabled {
		return &research.AuthToken{Subject: clientIdentity, Permissions: []research.Permission{research.PermAdmin}}, status, nil
	}

	token, err := a.authenticateToken(authorizationHeader)
	if err != nil {
		reason := "invalid_token"
		if authorizationHeader == "" {
			reason = "missing_token"
		}
		a.metrics.RecordAuthFailure(reason)
		return nil, status, err
	}

	if required != "" && !token.HasPermission(required) {
		a.metrics.RecordAuthFailure("forbidden")
		return nil, status, &ferrors.ForbiddenError{Permission: string(required)}
	}

	return token, status, nil
}

func (a *Authenticator) authenticateToken(authorizationHeader string) (*research.AuthToken, error) {
	raw, err := ExtractBearer(authorizationHeader)
	if err != nil {
		return nil, err
	}
	return a.issuer.Verify(raw)
}

func (a *Authenticator) bucketFor(clientIdentity string) *ratelimit.TokenBucket {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.limiters[clientIdentity]
	if !ok {
		b = ratelimit.NewTokenBucket(a.cfg.MaxRequestsPerMinute, float64(a.cfg.MaxRequestsPerMinute)/60)
		a.limiters[clientIdentity] = b
	}
	return b
}
