package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"mediaflow/internal/config"
	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
	"mediaflow/internal/port"
	"mediaflow/internal/stage"
)

// Pipeline stage names in execution order.
const (
	StageOptimize   = "optimize"
	StageUpload     = "upload"
	StageDistribute = "distribute"
	StageVerify     = "verify"
)

// DeployService queues deployment runs and drives them through the pipeline
// executor. A run is the unit of deployment: download the source asset, run
// optimize/upload/distribute/verify, persist the immutable result.
type DeployService interface {
	QueueDeploy(ctx context.Context, assetID, triggeredBy uuid.UUID) (*domain.PipelineRun, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error)
	ListRuns(ctx context.Context, status domain.RunStatus, offset, limit int) ([]domain.PipelineRun, int, error)
	ListRunsByAsset(ctx context.Context, assetID uuid.UUID, offset, limit int) ([]domain.PipelineRun, int, error)
	ExecuteRun(ctx context.Context, run *domain.PipelineRun)
	RunNow(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error)
}

type deployService struct {
	runRepo   port.RunRepository
	assetRepo port.AssetRepository
	storage   port.ObjectStorage
	cdn       port.CDN
	optimizer port.ImageOptimizer
	email     port.EmailSender
	executor  *pipeline.Executor
	cfg       *config.Config
}

// NewDeployService creates a new DeployService implementation.
func NewDeployService(
	runRepo port.RunRepository,
	assetRepo port.AssetRepository,
	storage port.ObjectStorage,
	cdn port.CDN,
	optimizer port.ImageOptimizer,
	email port.EmailSender,
	executor *pipeline.Executor,
	cfg *config.Config,
) DeployService {
	return &deployService{
		runRepo:   runRepo,
		assetRepo: assetRepo,
		storage:   storage,
		cdn:       cdn,
		optimizer: optimizer,
		email:     email,
		executor:  executor,
		cfg:       cfg,
	}
}

func (s *deployService) QueueDeploy(ctx context.Context, assetID, triggeredBy uuid.UUID) (*domain.PipelineRun, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	switch asset.Status {
	case domain.AssetStatusUploaded, domain.AssetStatusDeployed, domain.AssetStatusFailed:
	default:
		return nil, domain.ErrAssetNotDeployable
	}

	if _, err := s.runRepo.GetQueuedByAsset(ctx, assetID); err == nil {
		return nil, domain.ErrRunAlreadyQueued
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	run := &domain.PipelineRun{
		ID:          uuid.New(),
		AssetID:     assetID,
		TriggeredBy: triggeredBy,
		Status:      domain.RunStatusQueued,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	log.Printf("deployService.QueueDeploy: queued run %s for asset %s by user %s",
		run.ID, assetID, triggeredBy)
	return run, nil
}

func (s *deployService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error) {
	return s.runRepo.GetByID(ctx, runID)
}

func (s *deployService) ListRuns(ctx context.Context, status domain.RunStatus, offset, limit int) ([]domain.PipelineRun, int, error) {
	return s.runRepo.List(ctx, status, offset, limit)
}

func (s *deployService) ListRunsByAsset(ctx context.Context, assetID uuid.UUID, offset, limit int) ([]domain.PipelineRun, int, error) {
	return s.runRepo.ListByAsset(ctx, assetID, offset, limit)
}

// RunNow claims the given queued run and executes it synchronously, bypassing
// the queue worker. ErrNotFound means the run was never queued or a worker got
// to it first.
func (s *deployService) RunNow(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error) {
	run, err := s.runRepo.ClaimByID(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("run %s is not queued: %w", runID, err)
		}
		return nil, err
	}

	s.ExecuteRun(ctx, run)
	return s.runRepo.GetByID(ctx, runID)
}

// ExecuteRun performs one claimed run end to end and persists its outcome.
// Pipeline failures finish the run as rolled_back; only infrastructure errors
// around the run (download, persistence) finish it without a result document.
func (s *deployService) ExecuteRun(ctx context.Context, run *domain.PipelineRun) {
	log.Printf("deployService.ExecuteRun: starting run %s (asset %s, attempt %d)",
		run.ID, run.AssetID, run.Attempts)

	asset, err := s.assetRepo.GetByID(ctx, run.AssetID)
	if err != nil {
		s.finishFailed(ctx, run, nil, fmt.Errorf("loading asset: %w", err))
		return
	}

	data, err := s.storage.Download(ctx, asset.Bucket, asset.StorageKey)
	if err != nil {
		s.finishFailed(ctx, run, asset, fmt.Errorf("downloading source: %w", err))
		return
	}

	art := pipeline.NewArtifact(run.ID, asset.StorageKey, asset.FileName, asset.ContentType, data)
	res, err := s.executor.Run(ctx, art, s.buildStages())
	if err != nil {
		s.finishFailed(ctx, run, asset, fmt.Errorf("running pipeline: %w", err))
		return
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		s.finishFailed(ctx, run, asset, fmt.Errorf("encoding result: %w", err))
		return
	}

	now := time.Now().UTC()
	run.Result = resultJSON
	run.Error = res.Error
	run.FinishedAt = &now
	run.DurationMS = res.Duration.Milliseconds()
	if res.Succeeded() {
		run.Status = domain.RunStatusSucceeded
		_ = s.assetRepo.UpdateStatus(ctx, asset.ID, domain.AssetStatusDeployed)
	} else {
		run.Status = domain.RunStatusRolledBack
		_ = s.assetRepo.UpdateStatus(ctx, asset.ID, domain.AssetStatusFailed)
	}

	if err := s.runRepo.Finish(ctx, run); err != nil {
		log.Printf("deployService.ExecuteRun: persisting run %s failed: %v", run.ID, err)
	}

	log.Printf("deployService.ExecuteRun: run %s finished with status %s in %s",
		run.ID, run.Status, res.Duration)

	if !res.Succeeded() {
		for _, o := range res.CompensationFailures() {
			log.Printf("deployService.ExecuteRun: run %s left live effects: stage %s compensation failed: %s",
				run.ID, o.Stage, o.CompensationErr)
		}
		s.notifyFailure(run, asset)
	}
}

// buildStages assembles the deployment pipeline from config. The stage order
// is fixed; retry policy and timeouts are shared across stages.
func (s *deployService) buildStages() []pipeline.Stage {
	retry := pipeline.RetryPolicy{
		MaxAttempts: s.cfg.Pipeline.MaxAttempts,
		BaseDelay:   time.Duration(s.cfg.Pipeline.BackoffBaseMS) * time.Millisecond,
		MaxDelay:    time.Duration(s.cfg.Pipeline.BackoffCapMS) * time.Millisecond,
	}
	timeout := time.Duration(s.cfg.Pipeline.StageTimeoutSecs) * time.Second

	var thumbs []port.ThumbnailSpec
	if s.cfg.Optimizer.Thumbnails {
		thumbs = stage.DefaultThumbnails()
	}

	return []pipeline.Stage{
		{
			Name: StageOptimize,
			Op: &stage.OptimizeOp{
				Optimizer:        s.optimizer,
				ScratchDir:       s.cfg.Optimizer.ScratchDir,
				Quality:          s.cfg.Optimizer.Quality,
				ThumbnailQuality: s.cfg.Optimizer.ThumbnailQuality,
				MaxWidth:         s.cfg.Optimizer.MaxWidth,
				MaxHeight:        s.cfg.Optimizer.MaxHeight,
				Thumbnails:       thumbs,
			},
			Retry:   retry,
			Timeout: timeout,
		},
		{
			Name:    StageUpload,
			Op:      &stage.UploadOp{Storage: s.storage, Bucket: s.cfg.S3.DeployBucket},
			Retry:   retry,
			Timeout: timeout,
		},
		{
			Name:    StageDistribute,
			Op:      &stage.DistributeOp{CDN: s.cdn, Wait: s.cfg.CDN.WaitForPurge},
			Retry:   retry,
			Timeout: timeout,
		},
		{
			Name:       StageVerify,
			Op:         &stage.VerifyOp{Storage: s.storage, CDN: s.cdn, Bucket: s.cfg.S3.DeployBucket, Domain: s.cfg.CDN.Domain},
			Retry:      retry,
			Timeout:    timeout,
			Idempotent: true,
		},
	}
}

// finishFailed closes a run that never produced a pipeline result.
func (s *deployService) finishFailed(ctx context.Context, run *domain.PipelineRun, asset *domain.MediaAsset, cause error) {
	log.Printf("deployService.ExecuteRun: run %s failed: %v", run.ID, cause)

	now := time.Now().UTC()
	run.Status = domain.RunStatusRolledBack
	run.Error = cause.Error()
	run.FinishedAt = &now
	if run.StartedAt != nil {
		run.DurationMS = now.Sub(*run.StartedAt).Milliseconds()
	}
	if err := s.runRepo.Finish(ctx, run); err != nil {
		log.Printf("deployService.ExecuteRun: persisting failed run %s: %v", run.ID, err)
	}
	if asset != nil {
		_ = s.assetRepo.UpdateStatus(ctx, asset.ID, domain.AssetStatusFailed)
	}
	s.notifyFailure(run, asset)
}

// notifyFailure emails the alert recipient about a failed run, best effort.
func (s *deployService) notifyFailure(run *domain.PipelineRun, asset *domain.MediaAsset) {
	if s.email == nil || s.cfg.Email.AlertsTo == "" {
		return
	}
	assetName := run.AssetID.String()
	if asset != nil {
		assetName = asset.OriginalName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := s.email.SendRunFailureEmail(ctx, s.cfg.Email.AlertsTo, port.RunReport{
		RunID:      run.ID.String(),
		AssetName:  assetName,
		Status:     string(run.Status),
		Error:      run.Error,
		DurationMS: run.DurationMS,
	})
	if err != nil {
		log.Printf("deployService.notifyFailure: sending alert for run %s failed: %v", run.ID, err)
	}
}
