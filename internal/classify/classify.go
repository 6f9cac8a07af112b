// Package classify maps application errors to retry decisions and to the
// localized title, message and action shown to the user.
package classify

import (
	"fmt"
	"net/http"
	"time"

	"taskflow/internal/apperr"
)

// Actions a response may offer.
const (
	ActionLogin = "login"
	ActionRetry = "retry"
)

// Retry backoff bounds. MaxAttempts caps how often one failure may be
// retried.
const (
	BaseDelay   = 1000 * time.Millisecond
	MaxDelay    = 10000 * time.Millisecond
	MaxAttempts = 3
)

// TranslateFunc resolves a localization key with optional variables.
type TranslateFunc func(key string, vars map[string]string) string

// Response is what the user sees for an error.
type Response struct {
	Title   string
	Message string
	Action  string // ActionLogin, ActionRetry or empty
	Retry   bool
}

type mapping struct {
	titleKey   string
	messageKey string
	action     string
}

const unknownKey = "UNKNOWN"

var messages = map[string]mapping{
	"API_400": {"errors.badRequest", "errors.badRequestMessage", ""},
	"API_401": {"errors.unauthorized", "errors.unauthorizedMessage", ActionLogin},
	"API_403": {"errors.forbidden", "errors.forbiddenMessage", ""},
	"API_404": {"errors.notFound", "errors.notFoundMessage", ""},
	"API_409": {"errors.conflict", "errors.conflictMessage", ""},
	"API_422": {"errors.validation", "errors.validationMessage", ""},
	"API_429": {"errors.tooManyRequests", "errors.tooManyRequestsMessage", ""},
	"API_500": {"errors.serverError", "errors.serverErrorMessage", ActionRetry},
	"API_502": {"errors.serverError", "errors.serverErrorMessage", ActionRetry},
	"API_503": {"errors.serverError", "errors.serverErrorMessage", ActionRetry},

	"NETWORK":         {"errors.networkError", "errors.networkErrorMessage", ActionRetry},
	"NETWORK_OFFLINE": {"errors.offline", "errors.offlineMessage", ""},

	"AUTH":         {"errors.authError", "errors.authErrorMessage", ActionLogin},
	"AUTH_EXPIRED": {"errors.sessionExpired", "errors.sessionExpiredMessage", ActionLogin},

	"VALIDATION": {"errors.validationError", "errors.validationErrorMessage", ""},

	unknownKey: {"errors.unknown", "errors.unknownMessage", ActionRetry},
}

// Key returns the lookup key for an error.
func Key(err *apperr.Error) string {
	switch err.Kind {
	case apperr.KindAPI:
		return fmt.Sprintf("API_%d", err.Status)
	case apperr.KindNetwork:
		if err.IsOffline {
			return "NETWORK_OFFLINE"
		}
		return "NETWORK"
	case apperr.KindAuth:
		if err.IsTokenExpired {
			return "AUTH_EXPIRED"
		}
		return "AUTH"
	case apperr.KindValidation:
		return "VALIDATION"
	default:
		return unknownKey
	}
}

// BuildResponse resolves the user-facing response for err.
//
// Server-provided text wins where it is more specific than the catalog:
// validation messages other than the generic fallback, auth failures that are
// not token expiry, and API errors. Everything else uses the catalog message
// with context passed as the "context" variable.
func BuildResponse(err *apperr.Error, t TranslateFunc, context string) Response {
	m, ok := messages[Key(err)]
	if !ok {
		m = messages[unknownKey]
	}

	var message string
	switch {
	case err.Kind == apperr.KindValidation && err.Message != "" && err.Message != apperr.FallbackValidationMessage:
		message = err.Message
	case err.Kind == apperr.KindAuth && !err.IsTokenExpired && err.Message != "":
		message = err.Message
	case err.Kind == apperr.KindAPI && err.Message != "":
		message = err.Message
	default:
		message = t(m.messageKey, map[string]string{"context": context})
	}

	return Response{
		Title:   t(m.titleKey, nil),
		Message: message,
		Action:  m.action,
		Retry:   m.action == ActionRetry || ShouldRetry(err),
	}
}

// ShouldRetry reports whether the failed operation may succeed if repeated:
// network failures, server errors and rate limiting.
func ShouldRetry(err *apperr.Error) bool {
	switch err.Kind {
	case apperr.KindNetwork:
		return true
	case apperr.KindAPI:
		return err.Status >= http.StatusInternalServerError || err.Status == http.StatusTooManyRequests
	}
	return false
}

// RetryDelay returns the exponential backoff before retry attempt n
// (0-based), capped at MaxDelay.
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// 2^4 * BaseDelay already exceeds MaxDelay.
	if attempt > 4 {
		return MaxDelay
	}
	d := BaseDelay << attempt
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}
