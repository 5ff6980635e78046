// Package auth issues and verifies the signed bearer tokens that gate
// every permissioned Fortitude operation, and rate-limits callers by
// client identity. Tokens are JWTs (golang-jwt/jwt/v4) carrying the
// closed permission set from research.Permission — the teacher's
// APIKeyValidator (pkg/security/auth/apikey.go) only ever compared a
// bearer string against a static map, which cannot express an
// expiring, permission-scoped claim set; a signed JWT can.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// claims is the JWT claim set backing an AuthToken.
type claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens under a single HMAC key.
type Issuer struct {
	key      []byte
	issuer   string
	defaultTTL time.Duration
}

// NewIssuer creates an Issuer. signingKey must be non-empty;
// defaultTTL is used by Issue when ttl <= 0.
func NewIssuer(signingKey, issuerName string, defaultTTL time.Duration) (*Issuer, error) {
	if len(signingKey) == 0 {
		return nil, &ferrors.ConfigurationError{Component: "auth", Field: "signing_key", Message: "must not be empty"}
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Issuer{key: []byte(signingKey), issuer: issuerName, defaultTTL: defaultTTL}, nil
}

// Issue mints a signed token for subject carrying permissions, valid
// for ttl (or the issuer's default when ttl <= 0).
func (iss *Issuer) Issue(subject string, permissions []research.Permission, ttl time.Duration) (string, *research.AuthToken, error) {
	if subject == "" {
		return "", nil, &ferrors.InvalidInputError{Field: "subject", Message: "must not be empty"}
	}
	if ttl <= 0 {
		ttl = iss.defaultTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	perms := make([]string, len(permissions))
	for i, p := range permissions {
		perms[i] = string(p)
	}

	c := claims{
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    iss.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(iss.key)
	if err != nil {
		return "", nil, &ferrors.SerializationError{Cause: err}
	}

	return signed, &research.AuthToken{
		Subject:     subject,
		IssuedAt:    now,
		ExpiresAt:   expiresAt,
		Issuer:      iss.issuer,
		Permissions: permissions,
	}, nil
}

// Verify parses and validates a raw (unprefixed) token string,
// returning the decoded AuthToken on success. Every failure mode —
// malformed structure, wrong signing key, expiry, or a tampered
// payload — collapses to ferrors.UnauthorizedError so callers never
// have to distinguish "forged" from "expired" at the API boundary.
func (iss *Issuer) Verify(tokenString string) (*research.AuthToken, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, &ferrors.UnauthorizedError{Message: "empty token"}
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &ferrors.UnauthorizedError{Message: "unexpected signing method"}
		}
		return iss.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, &ferrors.UnauthorizedError{Message: "invalid or expired token"}
	}

	perms := make([]research.Permission, len(c.Permissions))
	for i, p := range c.Permissions {
		perms[i] = research.Permission(p)
	}

	var issuedAt, expiresAt time.Time
	if c.IssuedAt != nil {
		issuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		expiresAt = c.ExpiresAt.Time
	}

	return &research.AuthToken{
		Subject:     c.Subject,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
		Issuer:      c.Issuer,
		Permissions: perms,
	}, nil
}

// ExtractBearer pulls the raw token out of an Authorization header
// value, enforcing the exact, case-sensitive "Bearer " scheme prefix
// per spec §4.7's malformed-token matrix: an empty header, a missing
// prefix, a wrong-case scheme ("bearer "), or a prefix with nothing
// following it all fail identically.
func ExtractBearer(header string) (string, error) {
	const scheme = "Bearer "
	if header == "" {
		return "", &ferrors.UnauthorizedError{Message: "missing authorization header"}
	}
	if !strings.HasPrefix(header, scheme) {
		return "", &ferrors.UnauthorizedError{Message: "authorization header missing Bearer scheme"}
	}
	token := strings.TrimPrefix(header, scheme)
	if strings.TrimSpace(token) == "" {
		return "", &ferrors.UnauthorizedError{Message: "authorization header carries no token"}
	}
	return token, nil
}
