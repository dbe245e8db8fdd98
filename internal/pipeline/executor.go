package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"
)

const defaultCompensationTimeout = 30 * time.Second

// Executor runs an ordered stage list against a single artifact: stages
// execute strictly in order, transient failures are retried with exponential
// backoff, and a terminal failure unwinds every committed effect in reverse
// order. One executor may be shared by concurrent runs; all per-run state
// lives in the artifact and result.
type Executor struct {
	compensationTimeout time.Duration

	// sleep is swappable so retry schedules can be tested without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Executor.
type Option func(*Executor)

// WithCompensationTimeout sets the deadline applied to each compensating
// action during rollback. Non-positive values keep the default.
func WithCompensationTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.compensationTimeout = d
		}
	}
}

// NewExecutor creates an executor with default timeouts.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		compensationTimeout: defaultCompensationTimeout,
		sleep:               sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes the stages against the artifact and returns the run's result.
// Expected failures (transient exhaustion, permanent errors, cancellation)
// never surface as an error: they are reported inside the result after
// rollback. The returned error is reserved for malformed stage lists.
func (e *Executor) Run(ctx context.Context, art *Artifact, stages []Stage) (*Result, error) {
	if art == nil {
		return nil, fmt.Errorf("pipeline: nil artifact")
	}
	if err := validateStages(stages); err != nil {
		return nil, err
	}

	res := &Result{
		ArtifactID: art.ID,
		StartedAt:  time.Now().UTC(),
		Stages:     make([]StageOutcome, len(stages)),
	}
	for i, st := range stages {
		res.Stages[i] = StageOutcome{Stage: st.Name, State: StageSkipped}
	}

	failedAt := -1
	for i, st := range stages {
		// Cancellation is honored between stage boundaries, never mid-call.
		if ctx.Err() != nil {
			res.Canceled = true
			res.Error = "run canceled"
			failedAt = i
			break
		}

		eff, retries, err := e.runStage(ctx, st, art)
		res.Stages[i].Retries = retries
		if err != nil {
			res.Stages[i].State = StageFailed
			res.Stages[i].Error = err.Error()
			res.Error = fmt.Sprintf("stage %s: %v", st.Name, err)
			if ctx.Err() != nil {
				res.Canceled = true
			}
			failedAt = i
			break
		}

		res.Stages[i].State = StageCommitted
		if eff != nil {
			eff.Stage = st.Name
			eff.CommittedAt = time.Now().UTC()
			art.Commit(*eff)
		}
	}

	if failedAt < 0 {
		res.Status = StatusSucceeded
	} else {
		res.Status = StatusRolledBack
		e.rollback(art, stages, res)
	}

	res.Effects = append([]Effect(nil), art.Effects...)
	res.FinishedAt = time.Now().UTC()
	res.Duration = res.FinishedAt.Sub(res.StartedAt)
	return res, nil
}

// runStage performs one stage with per-attempt timeout and retry. It returns
// the committed effect (nil when the stage left no side effect) and the number
// of retries that were needed.
func (e *Executor) runStage(ctx context.Context, st Stage, art *Artifact) (*Effect, int, error) {
	var lastErr error
	for attempt := 0; attempt < st.Retry.MaxAttempts; attempt++ {
		attemptCtx := ctx
		cancel := func() {}
		if st.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, st.Timeout)
		}
		eff, err := st.Op.Execute(attemptCtx, art)
		cancel()
		if err == nil {
			return eff, attempt, nil
		}
		lastErr = err

		if ClassOf(err) == FailurePermanent {
			log.Printf("pipeline.Executor: stage %s failed permanently: %v", st.Name, err)
			return nil, attempt, err
		}
		if attempt == st.Retry.MaxAttempts-1 {
			break
		}
		delay := st.Retry.Delay(attempt)
		log.Printf("pipeline.Executor: stage %s attempt %d failed (%v), retrying in %s",
			st.Name, attempt+1, err, delay)
		if serr := e.sleep(ctx, delay); serr != nil {
			// Canceled while backing off; surface the cancellation.
			return nil, attempt, serr
		}
	}
	log.Printf("pipeline.Executor: stage %s exhausted %d attempts: %v", st.Name, st.Retry.MaxAttempts, lastErr)
	return nil, st.Retry.MaxAttempts - 1, lastErr
}

// rollback applies compensating actions for every committed effect in strict
// reverse commitment order. Compensations are best-effort: a failure is
// recorded against its stage and the remaining compensations still run. Each
// effect leaves the artifact's list only once its compensation succeeded, so
// after rollback the list holds exactly the effects that remain live.
func (e *Executor) rollback(art *Artifact, stages []Stage, res *Result) {
	if len(art.Effects) == 0 {
		return
	}
	log.Printf("pipeline.Executor: rolling back %d committed effect(s) for artifact %s",
		len(art.Effects), art.ID)

	ops := make(map[string]Operation, len(stages))
	idx := make(map[string]int, len(stages))
	idem := make(map[string]bool, len(stages))
	for i, st := range stages {
		ops[st.Name] = st.Op
		idx[st.Name] = i
		idem[st.Name] = st.Idempotent
	}

	var remaining []Effect
	for i := len(art.Effects) - 1; i >= 0; i-- {
		eff := art.Effects[i]
		op := ops[eff.Stage]

		// Idempotent stages declare their work safe to re-run and leave
		// nothing that needs undoing.
		if idem[eff.Stage] {
			res.Stages[idx[eff.Stage]].State = StageRolledBack
			continue
		}

		// Compensations run on a fresh context so a canceled run context
		// cannot abort the unwind mid-way.
		compCtx, cancel := context.WithTimeout(context.Background(), e.compensationTimeout)
		err := op.Compensate(compCtx, eff)
		cancel()

		j := idx[eff.Stage]
		if err != nil {
			log.Printf("pipeline.Executor: compensation for stage %s failed: %v", eff.Stage, err)
			res.Stages[j].CompensationErr = err.Error()
			remaining = append([]Effect{eff}, remaining...)
			continue
		}
		res.Stages[j].State = StageRolledBack
	}
	art.Effects = remaining
}
