package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

func TestIssuer_IssueVerify_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("test-signing-key", "fortitude", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}

	raw, issued, err := iss.Issue("user-1", []research.Permission{research.PermResearchRead}, 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	verified, err := iss.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if verified.Subject != issued.Subject {
		t.Errorf("subject mismatch: got %q, want %q", verified.Subject, issued.Subject)
	}
	if !verified.HasPermission(research.PermResearchRead) {
		t.Error("expected research:read permission to survive round trip")
	}
}

func TestIssuer_NewIssuer_RequiresKey(t *testing.T) {
	if _, err := NewIssuer("", "fortitude", time.Hour); err == nil {
		t.Fatal("expected error for empty signing key")
	}
}

func TestAuthToken_AdminImpliesAll(t *testing.T) {
	iss, _ := NewIssuer("k", "fortitude", time.Hour)
	raw, _, _ := iss.Issue("admin-user", []research.Permission{research.PermAdmin}, 0)
	token, err := iss.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	for _, p := range []research.Permission{research.PermResearchRead, research.PermResearchWrite, research.PermResourcesRead, research.PermConfigRead} {
		if !token.HasPermission(p) {
			t.Errorf("expected admin to imply %s", p)
		}
	}
}

// TestIssuer_Verify_MalformedTokenMatrix exercises every malformed
// case in spec §4.7/§8: every one must be rejected with an
// Unauthorized-class error.
func TestIssuer_Verify_MalformedTokenMatrix(t *testing.T) {
	iss, _ := NewIssuer("correct-signing-key", "fortitude", time.Hour)
	other, _ := NewIssuer("different-signing-key", "fortitude", time.Hour)

	valid, _, _ := iss.Issue("user-1", []research.Permission{research.PermResearchRead}, time.Hour)
	// Issue replaces a non-positive ttl with the default, so the expired
	// token is signed directly with an expiry in the past.
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Permissions: []string{string(research.PermResearchRead)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "fortitude",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("correct-signing-key"))
	wrongKey, _, _ := other.Issue("user-1", []research.Permission{research.PermResearchRead}, time.Hour)

	flipped := flipChar(valid)
	appended := valid + "x"

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"expired", expired},
		{"wrong signing key", wrongKey},
		{"appended bytes", appended},
		{"flipped character", flipped},
		{"garbage", "not-a-jwt-at-all"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := iss.Verify(tc.token)
			if err == nil {
				t.Fatalf("expected error for %s token", tc.name)
			}
			var unauthorized *ferrors.UnauthorizedError
			if !asUnauthorized(err, &unauthorized) {
				t.Fatalf("expected UnauthorizedError, got %T: %v", err, err)
			}
		})
	}
}

func TestExtractBearer_MalformedHeaderMatrix(t *testing.T) {
	iss, _ := NewIssuer("k", "fortitude", time.Hour)
	valid, _, _ := iss.Issue("u", []research.Permission{research.PermResearchRead}, time.Hour)

	cases := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"missing prefix", valid},
		{"wrong-case scheme", "bearer " + valid},
		{"trailing-only scheme", "Bearer "},
		{"trailing-only scheme whitespace", "Bearer    "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractBearer(tc.header)
			if err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestExtractBearer_WellFormed(t *testing.T) {
	token, err := ExtractBearer("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ExtractBearer() error = %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("got %q, want abc.def.ghi", token)
	}
}

func TestAuthenticator_Disabled_GrantsFullPermissions(t *testing.T) {
	a, err := NewAuthenticator(Config{Disabled: true})
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}
	token, _, err := a.Authenticate("", "client-1", research.PermAdmin)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if !token.HasPermission(research.PermResearchWrite) {
		t.Error("expected disabled auth to grant full permission set")
	}
}

func TestAuthenticator_MissingHeader_Unauthorized(t *testing.T) {
	a, _ := NewAuthenticator(Config{SigningKey: "k", Issuer: "fortitude"})
	_, _, err := a.Authenticate("", "client-1", research.PermResearchRead)
	if err == nil {
		t.Fatal("expected error for missing Authorization header")
	}
}

func TestAuthenticator_InsufficientPermission_Forbidden(t *testing.T) {
	a, _ := NewAuthenticator(Config{SigningKey: "k", Issuer: "fortitude"})
	raw, _, _ := a.Issuer().Issue("u", []research.Permission{research.PermResourcesRead}, time.Hour)

	_, _, err := a.Authenticate("Bearer "+raw, "client-1", research.PermAdmin)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	var forbidden *ferrors.ForbiddenError
	if !asForbidden(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %T: %v", err, err)
	}
}

func TestAuthenticator_RateLimit_ExceededOnThirdRequest(t *testing.T) {
	a, _ := NewAuthenticator(Config{Disabled: true, MaxRequestsPerMinute: 2})

	if _, _, err := a.Authenticate("", "client-1", ""); err != nil {
		t.Fatalf("request 1: unexpected error %v", err)
	}
	if _, _, err := a.Authenticate("", "client-1", ""); err != nil {
		t.Fatalf("request 2: unexpected error %v", err)
	}
	_, _, err := a.Authenticate("", "client-1", "")
	if err == nil {
		t.Fatal("expected rate limit error on third request")
	}
	var rl *ferrors.RateLimitExceededError
	if !asRateLimited(err, &rl) {
		t.Fatalf("expected RateLimitExceededError, got %T: %v", err, err)
	}
}

func flipChar(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || len(parts[2]) == 0 {
		return token + "Z"
	}
	sig := []byte(parts[2])
	sig[0] = sig[0] ^ 0x01
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}

func asUnauthorized(err error, target **ferrors.UnauthorizedError) bool {
	if e, ok := err.(*ferrors.UnauthorizedError); ok {
		*target = e
		return true
	}
	return false
}

func asForbidden(err error, target **ferrors.ForbiddenError) bool {
	if e, ok := err.(*ferrors.ForbiddenError); ok {
		*target = e
		return true
	}
	return false
}

func asRateLimited(err error, target **ferrors.RateLimitExceededError) bool {
	if e, ok := err.(*ferrors.RateLimitExceededError); ok {
		*target = e
		return true
	}
	return false
}
