package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mediaflow/internal/domain"
	"mediaflow/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.PipelineRun) error {
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.QueuedAt.IsZero() {
		run.QueuedAt = now
	}

	query := `INSERT INTO pipeline_runs (
		id, asset_id, triggered_by, status, attempts, result, error,
		queued_at, started_at, finished_at, duration_ms, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.AssetID, run.TriggeredBy, run.Status, run.Attempts,
		run.Result, run.Error, run.QueuedAt, run.StartedAt, run.FinishedAt,
		run.DurationMS, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM pipeline_runs WHERE id = $1", runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) GetQueuedByAsset(ctx context.Context, assetID uuid.UUID) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	err := r.db.GetContext(ctx, &run,
		`SELECT * FROM pipeline_runs WHERE asset_id = $1 AND status IN ($2, $3)
		 ORDER BY queued_at DESC LIMIT 1`,
		assetID, domain.RunStatusQueued, domain.RunStatusRunning)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetQueuedByAsset: %w", err)
	}
	return &run, nil
}

func (r *runRepo) List(ctx context.Context, status domain.RunStatus, offset, limit int) ([]domain.PipelineRun, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		fmt.Sprintf("SELECT COUNT(*) FROM pipeline_runs %s", where), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT * FROM pipeline_runs %s ORDER BY queued_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var runs []domain.PipelineRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	return runs, total, nil
}

func (r *runRepo) ListByAsset(ctx context.Context, assetID uuid.UUID, offset, limit int) ([]domain.PipelineRun, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM pipeline_runs WHERE asset_id = $1", assetID)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.ListByAsset count: %w", err)
	}

	var runs []domain.PipelineRun
	err = r.db.SelectContext(ctx, &runs,
		`SELECT * FROM pipeline_runs WHERE asset_id = $1
		 ORDER BY queued_at DESC LIMIT $2 OFFSET $3`,
		assetID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.ListByAsset: %w", err)
	}
	return runs, total, nil
}

func (r *runRepo) ListFinishedBetween(ctx context.Context, from, to string) ([]domain.PipelineRun, error) {
	var runs []domain.PipelineRun
	err := r.db.SelectContext(ctx, &runs,
		`SELECT * FROM pipeline_runs
		 WHERE finished_at IS NOT NULL AND finished_at >= $1::timestamptz AND finished_at < $2::timestamptz
		 ORDER BY finished_at`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("runRepo.ListFinishedBetween: %w", err)
	}
	return runs, nil
}

// ClaimQueued atomically flips up to limit queued runs to running and returns
// them. SKIP LOCKED keeps concurrent workers from claiming the same rows.
func (r *runRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	var runs []domain.PipelineRun
	err := r.db.SelectContext(ctx, &runs, `
		UPDATE pipeline_runs
		SET status = $1, started_at = NOW(), attempts = attempts + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM pipeline_runs
			WHERE status = $2
			ORDER BY queued_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		domain.RunStatusRunning, domain.RunStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("runRepo.ClaimQueued: %w", err)
	}
	return runs, nil
}

// ClaimByID flips one specific queued run to running. ErrNotFound means the
// run does not exist or was already claimed by a worker.
func (r *runRepo) ClaimByID(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	err := r.db.GetContext(ctx, &run, `
		UPDATE pipeline_runs
		SET status = $1, started_at = NOW(), attempts = attempts + 1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING *`,
		domain.RunStatusRunning, runID, domain.RunStatusQueued)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.ClaimByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) Finish(ctx context.Context, run *domain.PipelineRun) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pipeline_runs
		SET status = $1, result = $2, error = $3, finished_at = $4, duration_ms = $5, updated_at = NOW()
		WHERE id = $6`,
		run.Status, run.Result, run.Error, run.FinishedAt, run.DurationMS, run.ID)
	if err != nil {
		return fmt.Errorf("runRepo.Finish: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
