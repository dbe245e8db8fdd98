package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_DelayGrowsExponentially(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
	assert.Equal(t, 800*time.Millisecond, p.Delay(3))
}

func TestRetryPolicy_DelayIsCapped(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, 5*time.Second, p.Delay(3))
	// Shift overflow must not produce a negative delay.
	assert.Equal(t, 5*time.Second, p.Delay(60))
}

func TestClassOf(t *testing.T) {
	base := errors.New("boom")

	assert.Equal(t, FailureTransient, ClassOf(Transient(base)))
	assert.Equal(t, FailurePermanent, ClassOf(Permanent(base)))
	assert.Equal(t, FailurePermanent, ClassOf(base))
	assert.Equal(t, FailureTransient, ClassOf(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	// Classification survives wrapping.
	assert.Equal(t, FailureTransient, ClassOf(fmt.Errorf("upload: %w", Transient(base))))
}

func TestTransientNilPassthrough(t *testing.T) {
	assert.NoError(t, Transient(nil))
	assert.NoError(t, Permanent(nil))
}

func TestClassifiedErrorUnwraps(t *testing.T) {
	base := errors.New("no such key")
	assert.True(t, errors.Is(Permanent(base), base))
}
