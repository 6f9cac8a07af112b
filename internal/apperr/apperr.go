// Package apperr defines the closed taxonomy of application errors and the
// factory that builds them from transport failures and local checks.
package apperr

import (
	"fmt"
	"time"
)

// Kind identifies the taxonomy member of an Error.
type Kind string

const (
	KindNetwork    Kind = "NETWORK"
	KindAPI        Kind = "API"
	KindValidation Kind = "VALIDATION"
	KindAuth       Kind = "AUTH"
	// KindPermission and KindNotFound are part of the taxonomy but are not
	// produced by FromTransportFailure yet.
	KindPermission Kind = "PERMISSION"
	KindNotFound   Kind = "NOT_FOUND"
	KindUnknown    Kind = "UNKNOWN"
)

// Severity ranks how loudly an error should be reported.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Fallback messages used when a failure carries no message of its own.
const (
	FallbackAuthMessage       = "Authentication failed"
	FallbackValidationMessage = "Validation failed"
	FallbackAPIMessage        = "API request failed"
	FallbackNetworkMessage    = "Network Error"
	FallbackUnknownMessage    = "An unexpected error occurred"
)

// Error is a classified application error.
//
// Exactly one Kind is set per value. The variant fields are only meaningful
// for their kind: Status, Endpoint and Method for KindAPI, IsOffline for
// KindNetwork, Field and Value for KindValidation, IsTokenExpired for
// KindAuth. Values are built by the constructors in this package and must
// not be modified afterwards.
type Error struct {
	Kind      Kind
	Severity  Severity
	Message   string
	Timestamp time.Time

	Status   int
	Endpoint string
	Method   string

	IsOffline bool

	Field string
	Value any

	IsTokenExpired bool

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI:
		if e.Endpoint != "" {
			return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
		}
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	case KindValidation:
		if e.Field != "" {
			return fmt.Sprintf("%s: %s", e.Field, e.Message)
		}
	}
	return e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// HasStatus reports whether the error carries an HTTP status.
// Only KindAPI errors do.
func (e *Error) HasStatus() bool {
	return e.Kind == KindAPI
}
