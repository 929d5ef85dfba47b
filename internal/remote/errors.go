package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrValidation         = errors.New("request rejected as invalid")
	ErrPermission         = errors.New("permission denied")
	ErrUnauthorized       = errors.New("session expired or invalid")
	ErrRateLimited        = errors.New("too many requests")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("service unavailable")
	ErrNetwork            = errors.New("network failure")
	ErrNoSession          = errors.New("no active session")
)

// APIError is returned for every failed backend call. It matches both its
// sentinel Kind and the underlying cause with errors.Is.
type APIError struct {
	Op      string
	Status  int
	Message string
	Kind    error
	Cause   error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func kindForStatus(op string, status int) error {
	switch {
	case status == http.StatusUnauthorized && op == opSignIn:
		return ErrInvalidCredentials
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusForbidden:
		return ErrPermission
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrDuplicateAccount
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrUnavailable
	}
}
