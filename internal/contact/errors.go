package contact

import (
	"errors"
	"fmt"
)

var (
	// Form mutation errors. The form is left unchanged when one is returned.
	ErrFieldUnavailable      = errors.New("field type unavailable")
	ErrFieldNotFound         = errors.New("field not found")
	ErrNotAttachable         = errors.New("field does not accept attachments")
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")

	// ErrSubmitInFlight is returned by Submit while a previous call has not settled.
	ErrSubmitInFlight = errors.New("submission already in flight")

	// ErrNoEndpoint is returned by a Webhook configured without a URL.
	ErrNoEndpoint = errors.New("webhook endpoint not configured")
)

// ValidationError carries the per-field messages of a rejected attempt.
// Keys are fixed-field names or dynamic field ids.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// TransportError is a failed webhook delivery: either a network error or a
// non-2xx status.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return "webhook delivery: " + e.Err.Error()
	}
	return fmt.Sprintf("webhook delivery: unexpected status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
