package suggest

import (
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/datavault/internal/model"
)

// Error types for classifying gateway failures.

// ServiceUnavailableError means the completion service could not be reached or
// answered with a failure status.
type ServiceUnavailableError struct {
	err error
}

func (e *ServiceUnavailableError) Error() string {
	return "completion service unavailable: " + e.err.Error()
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.err
}

// MalformedResponseError means the service answered but the content was not a
// JSON object of the expected shape.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed completion response: " + e.Reason
}

// RateLimitError means the daily estimation allowance is used up. No request
// was sent.
type RateLimitError struct {
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("daily limit of %d estimations reached, resets at %s",
		e.Limit, e.ResetAt.Format(time.RFC3339))
}

// NewServiceUnavailableError wraps err as a service failure.
func NewServiceUnavailableError(err error) error {
	return &ServiceUnavailableError{err: err}
}

func malformed(format string, args ...any) error {
	return &MalformedResponseError{Reason: fmt.Sprintf(format, args...)}
}

// IsServiceUnavailable returns true if err is a service failure.
func IsServiceUnavailable(err error) bool {
	var target *ServiceUnavailableError
	return errors.As(err, &target)
}

// IsMalformedResponse returns true if err is a response shape failure.
func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// IsRateLimited returns true if err is a daily limit failure.
func IsRateLimited(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

// Kind names the failure class of err, for logs and API responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsRateLimited(err):
		return "rate_limited"
	case IsMalformedResponse(err):
		return "malformed_response"
	case IsServiceUnavailable(err):
		return "service_unavailable"
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return "invalid"
	}
	return "error"
}
