package service

import (
	"context"
	"log"
	"sync"
	"time"

	"mediaflow/internal/port"
)

// DeployQueueConfig holds settings for the deploy queue worker.
type DeployQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
	RunTimeout   time.Duration
}

// DeployQueueWorker polls for queued pipeline runs and dispatches them to the
// deploy service.
type DeployQueueWorker struct {
	runRepo       port.RunRepository
	deployService DeployService
	cfg           DeployQueueConfig
	wg            sync.WaitGroup
}

// NewDeployQueueWorker creates a new DeployQueueWorker.
func NewDeployQueueWorker(runRepo port.RunRepository, deployService DeployService, cfg DeployQueueConfig) *DeployQueueWorker {
	return &DeployQueueWorker{
		runRepo:       runRepo,
		deployService: deployService,
		cfg:           cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight runs have finished.
func (w *DeployQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("deployQueueWorker: started (poll=%s, concurrency=%d, runTimeout=%s)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.RunTimeout)

	for {
		select {
		case <-ctx.Done():
			log.Printf("deployQueueWorker: shutting down, waiting for in-flight runs...")
			w.wg.Wait()
			log.Printf("deployQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			runs, err := w.runRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				log.Printf("deployQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range runs {
				run := runs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight runs complete even during shutdown.
					runCtx, cancel := context.WithTimeout(context.Background(), w.cfg.RunTimeout)
					defer cancel()

					log.Printf("deployQueueWorker: dispatching run %s (attempt %d)", run.ID, run.Attempts)
					w.deployService.ExecuteRun(runCtx, &run)
				}()
			}
		}
	}
}
