// Command deploy runs the deployment pipeline for one asset synchronously,
// bypassing the queue worker. Useful for re-deploying a single asset from
// the command line.
// Usage: go run ./cmd/deploy <asset-id>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"mediaflow/internal/cdn"
	"mediaflow/internal/config"
	"mediaflow/internal/optimizer"
	"mediaflow/internal/pipeline"
	"mediaflow/internal/repository/postgres"
	"mediaflow/internal/service"
	s3storage "mediaflow/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		fmt.Println("Usage: deploy <asset-id>")
		os.Exit(1)
	}
	assetID, err := uuid.Parse(os.Args[1])
	if err != nil {
		return fmt.Errorf("invalid asset ID %q: %w", os.Args[1], err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	assetRepo := postgres.NewAssetRepo(db)
	runRepo := postgres.NewRunRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing S3 client: %w", err)
	}
	cdnClient := cdn.NewClient(&cfg.CDN)

	executor := pipeline.NewExecutor(
		pipeline.WithCompensationTimeout(time.Duration(cfg.Pipeline.CompensationTimeoutSecs) * time.Second))
	deploySvc := service.NewDeployService(
		runRepo, assetRepo, s3Client, cdnClient,
		optimizer.New(), nil, executor, cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Queue.RunTimeoutSecs)*time.Second)
	defer cancel()

	run, err := deploySvc.QueueDeploy(ctx, assetID, uuid.Nil)
	if err != nil {
		return fmt.Errorf("queueing run: %w", err)
	}

	finished, err := deploySvc.RunNow(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("executing run: %w", err)
	}

	fmt.Printf("run %s finished: status=%s duration=%dms\n", finished.ID, finished.Status, finished.DurationMS)
	if len(finished.Result) > 0 {
		var pretty json.RawMessage = finished.Result
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	}
	if finished.Error != "" {
		return fmt.Errorf("run failed: %s", finished.Error)
	}
	return nil
}
