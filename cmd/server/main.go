package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mediaflow/internal/cdn"
	"mediaflow/internal/config"
	"mediaflow/internal/email/noop"
	"mediaflow/internal/email/ses"
	"mediaflow/internal/handler"
	"mediaflow/internal/optimizer"
	"mediaflow/internal/pipeline"
	"mediaflow/internal/port"
	"mediaflow/internal/repository/postgres"
	"mediaflow/internal/router"
	"mediaflow/internal/service"
	s3storage "mediaflow/internal/storage/s3"
)

// @title MediaFlow API
// @version 1.0
// @description Media asset upload, optimization, and CDN deployment pipeline.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	assetRepo := postgres.NewAssetRepo(db)
	runRepo := postgres.NewRunRepo(db)

	// Initialize storage and CDN clients
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	cdnClient := cdn.NewClient(&cfg.CDN)
	imgOptimizer := optimizer.New()

	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender()
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	assetSvc := service.NewAssetService(assetRepo, s3Client, &cfg.S3)
	executor := pipeline.NewExecutor(
		pipeline.WithCompensationTimeout(time.Duration(cfg.Pipeline.CompensationTimeoutSecs) * time.Second))
	deploySvc := service.NewDeployService(runRepo, assetRepo, s3Client, cdnClient, imgOptimizer, emailSender, executor, cfg)
	reportSvc := service.NewReportService(runRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc, userSvc)
	assetH := handler.NewAssetHandler(assetSvc)
	runH := handler.NewRunHandler(deploySvc)
	reportH := handler.NewReportHandler(reportSvc)
	userH := handler.NewUserHandler(userSvc)
	healthH := handler.NewHealthHandler(db, runRepo)

	r := router.Setup(cfg, authSvc, authH, assetH, runH, reportH, userH, healthH)

	// Start the deploy queue worker
	worker := service.NewDeployQueueWorker(runRepo, deploySvc, service.DeployQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
		RunTimeout:   time.Duration(cfg.Queue.RunTimeoutSecs) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone

	log.Println("Shutdown complete")
	return nil
}
