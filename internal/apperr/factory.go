package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// now is replaced in tests.
var now = time.Now

// authEndpoints never report an expired token on 401: a failed login is a
// credentials problem, not a stale session.
var authEndpoints = []string{"/auth/login", "/auth/register", "/auth/refresh"}

// tokenExpiredIndicators are matched case-insensitively against the
// server message of a 401 response.
var tokenExpiredIndicators = []string{"token expired", "jwt expired", "session expired"}

// RequestError records which request produced a transport failure.
// The REST client wraps every failure in one so the factory can attach
// the endpoint and method to the classified error.
type RequestError struct {
	Method   string
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap returns the wrapped failure.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// errorPayload is the JSON error body returned by the REST backend.
type errorPayload struct {
	Message string `json:"message"`
	Field   string `json:"field"`
	Value   any    `json:"value"`
}

// FromTransportFailure classifies a failure returned by the REST client.
//
// A failure without an HTTP response is a network error. Responses are
// classified by status: 401/403 are auth errors, 422 is a validation error
// and everything else is an API error. It always returns a non-nil Error.
func FromTransportFailure(err error) *Error {
	if err == nil {
		return NewGeneric(FallbackUnknownMessage, KindUnknown)
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var method, endpoint string
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		method = strings.ToUpper(reqErr.Method)
		endpoint = reqErr.Endpoint
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		e := NewNetwork(networkMessage(err), IsOffline(err))
		e.cause = err
		return e
	}

	payload := decodePayload(apiErr)
	status := apiErr.Code

	var e *Error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		expired := status == http.StatusUnauthorized && isTokenExpiration(endpoint, payload.Message)
		e = NewAuth(orDefault(payload.Message, FallbackAuthMessage), expired)
	case status == http.StatusUnprocessableEntity:
		e = NewValidation(orDefault(payload.Message, FallbackValidationMessage), payload.Field, payload.Value)
	default:
		e = NewAPI(orDefault(payload.Message, FallbackAPIMessage), status, endpoint, method)
	}
	e.cause = err
	return e
}

// From converts any error into an Error. Errors that are not already
// classified become KindUnknown with their own message.
func From(err error) *Error {
	if err == nil {
		return NewGeneric(FallbackUnknownMessage, KindUnknown)
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	e := NewGeneric(err.Error(), KindUnknown)
	e.cause = err
	return e
}

// NewAPI creates an API error. Status 500 and above is HIGH severity.
func NewAPI(message string, status int, endpoint, method string) *Error {
	severity := SeverityMedium
	if status >= http.StatusInternalServerError {
		severity = SeverityHigh
	}
	return &Error{
		Kind:      KindAPI,
		Severity:  severity,
		Message:   message,
		Status:    status,
		Endpoint:  endpoint,
		Method:    method,
		Timestamp: now(),
	}
}

// NewNetwork creates a network error.
func NewNetwork(message string, isOffline bool) *Error {
	return &Error{
		Kind:      KindNetwork,
		Severity:  SeverityHigh,
		Message:   message,
		IsOffline: isOffline,
		Timestamp: now(),
	}
}

// NewValidation creates a validation error for an optional field and value.
func NewValidation(message, field string, value any) *Error {
	return &Error{
		Kind:      KindValidation,
		Severity:  SeverityLow,
		Message:   message,
		Field:     field,
		Value:     value,
		Timestamp: now(),
	}
}

// NewAuth creates an auth error.
func NewAuth(message string, isTokenExpired bool) *Error {
	return &Error{
		Kind:           KindAuth,
		Severity:       SeverityMedium,
		Message:        message,
		IsTokenExpired: isTokenExpired,
		Timestamp:      now(),
	}
}

// NewGeneric creates an error of the given kind without variant data.
// An empty kind means KindUnknown.
func NewGeneric(message string, kind Kind) *Error {
	if kind == "" {
		kind = KindUnknown
	}
	return &Error{
		Kind:      kind,
		Severity:  SeverityMedium,
		Message:   message,
		Timestamp: now(),
	}
}

// IsOffline reports whether a failure without a response looks like lost
// connectivity: DNS lookups and connection attempts that never reached a
// server. Timeouts and cancellations are not offline conditions.
func IsOffline(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" && !opErr.Timeout()
	}
	return false
}

// IsAuthEndpoint reports whether endpoint is one of the unauthenticated
// login, register or refresh endpoints.
func IsAuthEndpoint(endpoint string) bool {
	for _, ep := range authEndpoints {
		if strings.Contains(endpoint, ep) {
			return true
		}
	}
	return false
}

func isTokenExpiration(endpoint, message string) bool {
	if IsAuthEndpoint(endpoint) {
		return false
	}
	msg := strings.ToLower(message)
	for _, indicator := range tokenExpiredIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

func decodePayload(apiErr *googleapi.Error) errorPayload {
	var p errorPayload
	if apiErr.Body != "" {
		// Non-JSON bodies leave the payload empty.
		_ = json.Unmarshal([]byte(apiErr.Body), &p)
	}
	if p.Message == "" {
		p.Message = apiErr.Message
	}
	return p
}

func networkMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Err != nil {
		return reqErr.Err.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackNetworkMessage
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
