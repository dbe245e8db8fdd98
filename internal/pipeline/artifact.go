package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Effect records one durable external side effect committed by a stage, kept
// so a later failure can undo it. Refs identify the touched resources (object
// keys, staged file paths, purge paths) in commit order.
type Effect struct {
	Stage       string    `json:"stage"`
	Kind        string    `json:"kind"`
	Refs        []string  `json:"refs"`
	CommittedAt time.Time `json:"committed_at"`
}

// Well-known effect kinds produced by the built-in stages.
const (
	EffectRenditionStaged = "rendition_staged"
	EffectObjectUploaded  = "object_uploaded"
	EffectCachePurged     = "cache_purged"
)

// Artifact is the unit of work flowing through a pipeline run. Each stage may
// mutate Meta and payload fields; Effects is append-only until a rollback
// starts unwinding it. An Artifact is owned by exactly one executor run.
type Artifact struct {
	ID          uuid.UUID
	SourcePath  string
	Key         string
	ContentType string
	Data        []byte

	// Meta carries values between stages (staged rendition paths, deployed
	// keys, CDN URLs) without widening the stage contract.
	Meta map[string]string

	Effects []Effect
}

// NewArtifact creates an artifact ready for a pipeline run.
func NewArtifact(id uuid.UUID, sourcePath, key, contentType string, data []byte) *Artifact {
	return &Artifact{
		ID:          id,
		SourcePath:  sourcePath,
		Key:         key,
		ContentType: contentType,
		Data:        data,
		Meta:        make(map[string]string),
	}
}

// Commit appends a side effect to the artifact's audit trail.
func (a *Artifact) Commit(eff Effect) {
	a.Effects = append(a.Effects, eff)
}
