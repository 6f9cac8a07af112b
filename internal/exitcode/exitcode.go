// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"
	"net/http"

	"taskflow/internal/apperr"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid input, not found).
	UserError = 1

	// AuthError indicates a missing, expired or rejected session.
	AuthError = 2

	// BackendError indicates an API, network or unexpected error.
	BackendError = 3
)

// FromError maps an error to an exit code. Unclassified errors are
// backend errors; a 404 from the API is a user error.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return BackendError
	}
	if appErr.Kind == apperr.KindAPI && appErr.Status == http.StatusNotFound {
		return UserError
	}
	return FromKind(appErr.Kind)
}

// FromKind maps an error kind to an exit code.
func FromKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindNotFound:
		return UserError
	case apperr.KindAuth, apperr.KindPermission:
		return AuthError
	default:
		return BackendError
	}
}
