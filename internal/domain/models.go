package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an operator account allowed to manage assets and deployments.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MediaAsset represents a source media object stored in the source bucket and
// awaiting (or having completed) deployment runs.
type MediaAsset struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	UploadedBy   uuid.UUID   `db:"uploaded_by" json:"uploaded_by"`
	FileName     string      `db:"file_name" json:"file_name"`
	OriginalName string      `db:"original_name" json:"original_name"`
	FileType     FileType    `db:"file_type" json:"file_type"`
	FileSize     int64       `db:"file_size" json:"file_size"`
	Bucket       string      `db:"bucket" json:"bucket"`
	StorageKey   string      `db:"storage_key" json:"storage_key"`
	ContentType  string      `db:"content_type" json:"content_type"`
	Status       AssetStatus `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// PipelineRun represents one deployment attempt of an asset through the
// optimize/upload/distribute/verify pipeline. Result holds the executor's
// immutable PipelineResult as JSON once the run finishes.
type PipelineRun struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	AssetID     uuid.UUID       `db:"asset_id" json:"asset_id"`
	TriggeredBy uuid.UUID       `db:"triggered_by" json:"triggered_by"`
	Status      RunStatus       `db:"status" json:"status"`
	Attempts    int             `db:"attempts" json:"attempts"`
	Result      json.RawMessage `db:"result" json:"result,omitempty"`
	Error       string          `db:"error" json:"error,omitempty"`
	QueuedAt    time.Time       `db:"queued_at" json:"queued_at"`
	StartedAt   *time.Time      `db:"started_at" json:"started_at,omitempty"`
	FinishedAt  *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
	DurationMS  int64           `db:"duration_ms" json:"duration_ms"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
