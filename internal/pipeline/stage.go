package pipeline

import (
	"context"
	"fmt"
	"time"
)

// Operation is the capability a stage wraps around an external collaborator
// (object storage, CDN, optimizer). Execute performs the forward action and
// returns the committed side effect, or nil when the action left nothing
// durable behind. Compensate undoes a previously committed effect; undoing an
// effect that is already absent must return nil.
type Operation interface {
	Execute(ctx context.Context, art *Artifact) (*Effect, error)
	Compensate(ctx context.Context, eff Effect) error
}

// RetryPolicy bounds how a stage's transient failures are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, first attempt included.
	MaxAttempts int `json:"max_attempts"`
	// BaseDelay seeds the exponential backoff: BaseDelay * 2^attempt.
	BaseDelay time.Duration `json:"base_delay"`
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration `json:"max_delay"`
}

// DefaultRetryPolicy mirrors the documented defaults: 3 attempts, 500ms base
// doubling up to 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}
}

// Delay returns the wait before re-running a stage after the given zero-based
// attempt failed.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Stage is one step of a pipeline: a named operation plus its retry policy and
// per-attempt timeout. Idempotent marks operations safe to re-run without a
// compensating action; rollback drops their effects without calling Compensate.
type Stage struct {
	Name       string
	Op         Operation
	Retry      RetryPolicy
	Timeout    time.Duration
	Idempotent bool
}

// validateStages rejects malformed stage lists up front. These are programming
// errors, never retried (run returns the error immediately).
func validateStages(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("pipeline: no stages given")
	}
	seen := make(map[string]bool, len(stages))
	for i, st := range stages {
		if st.Name == "" {
			return fmt.Errorf("pipeline: stage %d has no name", i)
		}
		if st.Op == nil {
			return fmt.Errorf("pipeline: stage %q has no operation", st.Name)
		}
		if seen[st.Name] {
			return fmt.Errorf("pipeline: duplicate stage name %q", st.Name)
		}
		seen[st.Name] = true
		if st.Retry.MaxAttempts <= 0 {
			return fmt.Errorf("pipeline: stage %q has non-positive max attempts", st.Name)
		}
	}
	return nil
}
