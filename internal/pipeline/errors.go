package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// FailureClass partitions stage errors into retryable and terminal failures.
type FailureClass string

const (
	// FailureTransient marks errors worth retrying: timeouts, throttling,
	// 5xx-class responses from an external service.
	FailureTransient FailureClass = "transient"
	// FailurePermanent marks errors that retrying cannot fix: validation,
	// authorization, missing resources.
	FailurePermanent FailureClass = "permanent"
)

type classifiedError struct {
	class FailureClass
	err   error
}

func (e *classifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.class, e.err)
}

func (e *classifiedError) Unwrap() error { return e.err }

// Transient wraps err so the executor retries the stage per its retry policy.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{class: FailureTransient, err: err}
}

// Permanent wraps err so the executor skips retries and rolls back immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{class: FailurePermanent, err: err}
}

// ClassOf reports the failure class of err. Deadline expiry counts as
// transient; unclassified errors default to permanent so an unknown failure
// never loops through the retry budget.
func ClassOf(err error) FailureClass {
	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.class
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTransient
	}
	return FailurePermanent
}
