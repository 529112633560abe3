// Package errs defines the error taxonomy shared by the upstream executor,
// the typed API clients, and the metrics layer.
//
// Each class is a distinct struct type so callers can branch on failure class
// with errors.As instead of sniffing message strings. The helpers at the
// bottom cover the common checks.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed caller input: a bad identifier, a
// comparison set outside 2..10 entities, an unknown industry, a bad date.
// Never retried, surfaced immediately.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthenticationError reports an upstream credential rejection (HTTP 401).
// Retrying cannot fix a bad credential, so the executor fails fast on it.
type AuthenticationError struct {
	Endpoint string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (401) for %s: check the API key configuration", e.Endpoint)
}

// NotFoundError reports a soft absence: the upstream has no record for the
// identifier (HTTP 404). It is not retried and callers are expected to check
// for it before treating a fetch as successful.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found for %s", e.Resource, e.ID)
}

// RateLimitExceededError reports that the retry budget was exhausted while
// the upstream kept answering 429.
type RateLimitExceededError struct {
	Endpoint string
	Attempts int
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s after %d attempts", e.Endpoint, e.Attempts)
}

// RequestFailedError reports any other non-success outcome that survived the
// retry budget: a non-2xx status or a transport fault. StatusCode is zero for
// transport-level failures; Cause carries the last observed error.
type RequestFailedError struct {
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d", e.Endpoint, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("request to %s failed", e.Endpoint)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthentication reports whether err is an AuthenticationError.
func IsAuthentication(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsRateLimited reports whether err is a RateLimitExceededError.
func IsRateLimited(err error) bool {
	var re *RateLimitExceededError
	return errors.As(err, &re)
}

// IsRequestFailed reports whether err is a RequestFailedError.
func IsRequestFailed(err error) bool {
	var rf *RequestFailedError
	return errors.As(err, &rf)
}
