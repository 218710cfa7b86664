package pacer

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/JohnPlummer/jp-go-errors"
)

// ErrInvalidRateLimit is returned by ConfigureLimit and friends when a rate
// limit value is neither a time.Duration nor a Strategy.
var ErrInvalidRateLimit = errors.New("pacer: invalid rate limit")

// ErrTransport is the sentinel matched by errors.Is for any TransportError.
var ErrTransport = errors.New("pacer: transport failure")

// InvalidRateLimitError reports a rate limit value of an unsupported type.
// It is surfaced at configuration time, never deferred to request time.
type InvalidRateLimitError struct {
	Endpoint string
	Value    any
}

func (e *InvalidRateLimitError) Error() string {
	return fmt.Sprintf("pacer: invalid rate limit for %q: got %T, want time.Duration or Strategy",
		e.Endpoint, e.Value)
}

func (e *InvalidRateLimitError) Unwrap() error {
	return ErrInvalidRateLimit
}

// TransportError wraps the transport-level failure from the final attempt
// after the retry budget is exhausted. Intermediate failures are swallowed;
// only the last one is carried here.
type TransportError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pacer: %s %s failed after %d attempt(s): %v",
		e.Method, e.URL, e.Attempts, e.Err)
}

// Unwrap lets errors.Is match both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ErrorClassifier determines whether a transport failure should trigger a
// retry. Implement this to customize retry behavior for specific error types.
type ErrorClassifier interface {
	// IsRetryable returns true if the error represents a transient failure
	// worth another attempt.
	IsRetryable(err error) bool
}

// transientClassifier is the default classifier. Transport failures are
// presumed transient; context cancellation and deadline expiry are not, since
// retrying with the same context would fail immediately.
type transientClassifier struct{}

func (transientClassifier) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check context errors first: context.DeadlineExceeded would otherwise be
	// picked up by the generic timeout check below.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// Well-known transient sentinels.
	if errors.Is(err, pkgerrors.ErrRateLimited) {
		return true
	}
	if pkgerrors.IsTimeout(err) {
		return true
	}

	// Anything else the transport raises (connection refused, reset,
	// malformed response) is treated as transient.
	return true
}

// DefaultErrorClassifier returns the classifier used when none is configured:
// every transport failure is retryable except context cancellation and
// deadline expiry.
func DefaultErrorClassifier() ErrorClassifier {
	return transientClassifier{}
}
