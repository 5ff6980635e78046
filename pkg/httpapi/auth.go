package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fortitude-run/fortitude/pkg/auth"
	"github.com/fortitude-run/fortitude/pkg/httpapi/middleware"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// requireAuth wraps a handler with token verification, permission
// enforcement, and per-client rate limiting, all delegated to
// pkg/auth.Authenticator. The client identity is the remote address;
// X-RateLimit-Limit and X-RateLimit-Remaining are set whenever the
// authenticator reports a rate-limit status, even on the admin bypass
// path. X-RateLimit-Reset is not sent.
func requireAuth(authenticator *auth.Authenticator, permission research.Permission, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, status, err := authenticator.Authenticate(r.Header.Get("Authorization"), r.RemoteAddr, permission)
		if status != nil {
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(status.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(status.Remaining, 10))
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), middleware.AuthTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// authTokenFromContext returns the verified token stashed by
// requireAuth, or nil if the route carries no auth.
func authTokenFromContext(ctx context.Context) *research.AuthToken {
	tok, _ := ctx.Value(middleware.AuthTokenKey).(*research.AuthToken)
	return tok
}
