package httpapi

import (
	"net/http"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// classifyError maps an internal error to the HTTP status and stable
// error_code string spec §7 requires: internal detail (stack traces,
// paths, secrets) never crosses this boundary, only the taxonomy kind
// and the error's own Error() message.
func classifyError(err error) (status int, code string) {
	switch e := err.(type) {
	case *ferrors.InvalidInputError:
		return http.StatusBadRequest, "invalid_input"
	case *ferrors.UnauthorizedError:
		return http.StatusUnauthorized, "unauthorized"
	case *ferrors.ForbiddenError:
		return http.StatusForbidden, "forbidden"
	case *ferrors.NotFoundError:
		return http.StatusNotFound, "not_found"
	case *ferrors.RateLimitExceededError:
		return http.StatusTooManyRequests, "rate_limit_exceeded"
	case *ferrors.QuotaExceededError:
		return http.StatusTooManyRequests, "quota_exceeded"
	case *ferrors.TimeoutError:
		return http.StatusGatewayTimeout, "timeout"
	case *ferrors.NetworkError:
		return http.StatusBadGateway, "network_error"
	case *ferrors.ServiceUnavailableError:
		return http.StatusServiceUnavailable, "service_unavailable"
	case *ferrors.AuthenticationFailedError:
		return http.StatusBadGateway, "upstream_authentication_failed"
	case *ferrors.SerializationError:
		return http.StatusInternalServerError, "serialization_error"
	case *ferrors.ConfigurationError:
		return http.StatusInternalServerError, "configuration_error"
	case *ferrors.StorageFullError:
		return http.StatusInsufficientStorage, "storage_full"
	case *ferrors.StorageIOError:
		return http.StatusInternalServerError, "storage_io_error"
	case *ferrors.ClassificationLowConfidenceError:
		return http.StatusBadRequest, "classification_low_confidence"
	case *ferrors.ProviderError:
		if e.Retryable {
			return http.StatusBadGateway, "provider_error"
		}
		return http.StatusUnprocessableEntity, "provider_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// paginationParams validates limit/offset against spec §6's
// constraint (limit in [1,100], offset >= 0) and returns an
// InvalidInputError on violation.
func paginationParams(limitStr, offsetStr string) (limit, offset int, err error) {
	limit, offset = 20, 0

	if limitStr != "" {
		if limit, err = atoiStrict(limitStr); err != nil || limit < 1 || limit > 100 {
			return 0, 0, &ferrors.InvalidInputError{Field: "limit", Message: "must be an integer in [1, 100]"}
		}
	}
	if offsetStr != "" {
		if offset, err = atoiStrict(offsetStr); err != nil || offset < 0 {
			return 0, 0, &ferrors.InvalidInputError{Field: "offset", Message: "must be a non-negative integer"}
		}
	}
	return limit, offset, nil
}

func atoiStrict(s string) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, &ferrors.InvalidInputError{Field: "pagination", Message: "not a non-negative integer"}
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
