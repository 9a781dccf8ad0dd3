// Package errs defines common error variables used across the application.
package errs

import "errors"

var (
	// ErrDispatcherClosed indicates that the dispatcher is closed and cannot accept new requests.
	ErrDispatcherClosed = errors.New("dispatcher is closed")
	// ErrQueueFull indicates that the request queue is full.
	ErrQueueFull = errors.New("request queue is full")
)

// Request errors.
var (
	// ErrInvalidURL indicates that the submitted text is not a valid http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrUnsupportedURL indicates that the URL belongs to no supported platform.
	ErrUnsupportedURL = errors.New("unsupported url")
)

// Extraction errors.
var (
	// ErrNoMedia indicates that a strategy completed without producing any media files.
	ErrNoMedia = errors.New("no media found")
	// ErrRateLimited indicates that the platform refused the request for quota or login reasons.
	ErrRateLimited = errors.New("rate limited by platform")
	// ErrNoStrategies indicates that no extraction strategy is registered for the platform.
	ErrNoStrategies = errors.New("no strategies for platform")
)

// Delivery errors.
var (
	// ErrFileTooLarge indicates that the produced file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Binary bootstrap errors.
var (
	// ErrBinaryNotFound indicates that the required binary was not found.
	ErrBinaryNotFound = errors.New("binary not found")
	// ErrUnsupportedPlatform indicates that the current platform is not supported.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// retryableError marks a failure that should advance the fallback chain
// instead of stopping it.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

// Retryable wraps err so the fallback chain tries the next strategy.
// errors.Is/As still see the underlying error.
func Retryable(err error) error {
	if err == nil {
		return nil
	}

	return &retryableError{err: err}
}

// IsRetryable reports whether err (or anything it wraps) was marked retryable.
func IsRetryable(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}
