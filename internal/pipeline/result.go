package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of a pipeline run.
type Status string

const (
	// StatusSucceeded means every stage committed.
	StatusSucceeded Status = "succeeded"
	// StatusRolledBack means a stage failed terminally and compensations ran
	// for all previously committed effects. Compensation failures do not
	// change the status; they are reported per stage and any effect whose
	// compensation failed stays in Result.Effects.
	StatusRolledBack Status = "rolled_back"
)

// StageState is the per-stage outcome within a run.
type StageState string

const (
	StageCommitted  StageState = "committed"
	StageFailed     StageState = "failed"
	StageRolledBack StageState = "rolled_back"
	StageSkipped    StageState = "skipped"
)

// StageOutcome describes what happened to one stage during a run.
type StageOutcome struct {
	Stage           string     `json:"stage"`
	State           StageState `json:"state"`
	Retries         int        `json:"retries"`
	Error           string     `json:"error,omitempty"`
	CompensationErr string     `json:"compensation_error,omitempty"`
}

// Result is the immutable record of a pipeline run. It always reflects the
// true final state of the artifact's side effects: Effects is empty after a
// clean rollback and lists every committed (or un-compensatable) effect
// otherwise, so a half-committed state is never silent.
type Result struct {
	ArtifactID uuid.UUID      `json:"artifact_id"`
	Status     Status         `json:"status"`
	Canceled   bool           `json:"canceled,omitempty"`
	Stages     []StageOutcome `json:"stages"`
	Effects    []Effect       `json:"effects"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Duration   time.Duration  `json:"duration_ns"`
}

// Succeeded reports whether every stage committed.
func (r *Result) Succeeded() bool { return r.Status == StatusSucceeded }

// CompensationFailures returns the stages whose compensating action failed
// during rollback.
func (r *Result) CompensationFailures() []StageOutcome {
	var failed []StageOutcome
	for _, o := range r.Stages {
		if o.CompensationErr != "" {
			failed = append(failed, o)
		}
	}
	return failed
}

// Outcome returns the recorded outcome for a stage name, if present.
func (r *Result) Outcome(stage string) (StageOutcome, bool) {
	for _, o := range r.Stages {
		if o.Stage == stage {
			return o, true
		}
	}
	return StageOutcome{}, false
}
