// Package resilience provides the retry combinator and error taxonomy for
// external inference calls.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry (timeouts, 5xx,
// connection resets).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// RateLimitError marks an upstream throttling response. Retryable, but on the
// rate-limit backoff track, which escalates from a higher floor than the
// generic transient track.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return e.Err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps an error as a throttling response.
func NewRateLimitError(err error) *RateLimitError {
	return &RateLimitError{Err: err}
}

// AuthError marks a credential failure. Never retried: every subsequent call
// would fail identically, so callers abort the whole operation.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError wraps an error as an authentication/authorization failure.
func NewAuthError(err error) *AuthError {
	return &AuthError{Err: err}
}

// IsRateLimited reports whether the chain contains a RateLimitError.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// IsAuthError reports whether the chain contains an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError or RateLimitError, or matches common transient network
// failure patterns. Auth errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsAuthError(err) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if IsRateLimited(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// ClassifyHTTPStatus wraps err according to the response status code:
// 401/403 become AuthError, 429 becomes RateLimitError, retryable 408/5xx
// become TransientError, anything else passes through unchanged.
func ClassifyHTTPStatus(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	switch {
	case statusCode == 401 || statusCode == 403:
		return NewAuthError(err)
	case statusCode == 429:
		return NewRateLimitError(err)
	case statusCode == 408 || (statusCode >= 500 && statusCode <= 504):
		return NewTransientError(err, statusCode)
	default:
		return err
	}
}
