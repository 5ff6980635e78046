package providers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// mapHTTPError maps a non-2xx HTTP response from provider onto the
// shared error taxonomy, mirroring the teacher's status-code switch in
// http_provider.go's DoRequest but resolving straight to ferrors
// instead of a provider-local error type, since every caller above the
// HTTP boundary only ever inspects the shared taxonomy.
func mapHTTPError(provider string, statusCode int, body string, retryAfterHeader string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ferrors.AuthenticationFailedError{Provider: provider, Message: body}

	case http.StatusTooManyRequests:
		return &ferrors.RateLimitExceededError{
			RetryAfter: parseRetryAfter(retryAfterHeader),
			Message:    fmt.Sprintf("provider %q rate limited the request: %s", provider, body),
		}

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ferrors.ProviderError{
			Provider: provider, Code: "bad_request", StatusCode: statusCode,
			Message: body, Retryable: false,
		}

	case http.StatusNotFound:
		return &ferrors.NotFoundError{Kind: "model_or_endpoint", ID: provider}

	default:
		retryable := statusCode >= 500
		return &ferrors.ProviderError{
			Provider: provider, Code: "http_error", StatusCode: statusCode,
			Message: body, Retryable: retryable,
		}
	}
}

// parseRetryAfter parses a Retry-After header value in either
// delay-seconds or HTTP-date form.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}
