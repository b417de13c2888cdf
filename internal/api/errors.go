package api

import (
	"errors"
	"net/http"
)

// ErrUnauthorized marks an expired or invalid credential. It is the only
// error the session controller treats as forcing a logout.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a rejected request with the server-provided message. It matches
// ErrUnauthorized under errors.Is when the status is 401.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message extracts a user-displayable message from an API call error,
// falling back to the given default for transport-level failures.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsValidation reports whether err is a server-side rejection of the
// request body.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}

func statusError(status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}
