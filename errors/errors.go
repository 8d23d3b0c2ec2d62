package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel markers. Errors produced anywhere in the service are marked with one
// of these so the transport layer can pick a response kind without string matching.
var (
	ErrValidation       = errors.New("validation error")
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")

	// Checked in order, so a client-facing mark wins over an internal one.
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrValidation, http.StatusUnprocessableEntity},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
)

// NewValidation returns an error carrying msg, marked as a validation failure.
func NewValidation(msg string) error {
	return errors.Mark(errors.New(msg), ErrValidation)
}

// NewBadRequest returns an error carrying msg, marked as a malformed request.
func NewBadRequest(msg string) error {
	return errors.Mark(errors.New(msg), ErrBadRequest)
}

// NewNotFound returns an error carrying msg, marked as not found.
func NewNotFound(msg string) error {
	return errors.Mark(errors.New(msg), ErrNotFound)
}

// NewPermissionDenied returns an error carrying msg, marked as forbidden.
func NewPermissionDenied(msg string) error {
	return errors.Mark(errors.New(msg), ErrPermissionDenied)
}

// Database marks err as a persistence failure. The original message is kept
// intact because it is surfaced to the caller as-is.
func Database(err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return err
	}
	return errors.Mark(err, ErrDatabase)
}

// Mark attaches the given sentinel to err.
func Mark(err error, reference error) error {
	return errors.Mark(err, reference)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// HTTPStatusFromErr maps a marked error to its HTTP status, defaulting to 500.
func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
