package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"filewise/internal/classifier"
	"filewise/internal/config"
	"filewise/internal/email/noop"
	"filewise/internal/email/ses"
	"filewise/internal/handler"
	"filewise/internal/logger"
	"filewise/internal/port"
	progressnoop "filewise/internal/progress/noop"
	progressredis "filewise/internal/progress/redis"
	"filewise/internal/repository/postgres"
	"filewise/internal/router"
	"filewise/internal/service"
	s3storage "filewise/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// progressBus is both ends of the batch progress channel.
type progressBus interface {
	port.ProgressPublisher
	port.ProgressSubscriber
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLog, err := logger.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer appLog.Sync()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	cacheRepo := postgres.NewCacheRepo(db)
	correctionRepo := postgres.NewCorrectionRepo(db)
	exportRepo := postgres.NewExportRepo(db)
	batchRepo := postgres.NewBatchRepo(db)
	itemRepo := postgres.NewItemRepo(db)
	documentRepo := postgres.NewDocumentRepo(db)
	duplicateChecker := postgres.NewDuplicateCheckerRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	healthChecks := []handler.HealthCheck{{Name: "database", Check: db.PingContext}}

	// Progress events
	var progress progressBus
	if cfg.Redis.Addr != "" {
		pub, err := progressredis.NewPublisher(&cfg.Redis, appLog)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = pub.Close() }()
		progress = pub
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Check: pub.Ping})
		appLog.Info("progress events published to redis", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	} else {
		progress = progressnoop.NewPublisher(appLog)
		appLog.Info("redis not configured, progress events are only logged")
	}

	// Email
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL, appLog)
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWT)
	cacheSvc := service.NewClassificationCacheService(cacheRepo, appLog)
	correctionSvc := service.NewCorrectionService(correctionRepo, cacheSvc, appLog)
	exportSvc := service.NewTrainingExportService(exportRepo, correctionRepo, s3Client,
		service.TrainingExportConfig{Bucket: cfg.S3.Bucket, PresignExpiry: cfg.Export.PresignExpiry}, appLog)

	exportWorker := service.NewExportRecoveryWorker(exportRepo, exportSvc, service.ExportRecoveryConfig{
		PollInterval: time.Duration(cfg.Export.RecoveryPollSecs) * time.Second,
		StaleAfter:   time.Duration(cfg.Export.StaleAfterMins) * time.Minute,
		Concurrency:  cfg.Export.RecoveryConcurrency,
	}, appLog)

	learning := service.NewLearningClassifier(
		classifier.New(&cfg.Classifier, appLog),
		cacheSvc, correctionSvc, cfg.Classifier.RefineThreshold, appLog,
	)
	bulkSvc := service.NewBulkUploadService(
		batchRepo, itemRepo, documentRepo, s3Client, learning, duplicateChecker,
		correctionSvc, progress, emailSender,
		service.BulkUploadConfig{
			Bucket:        cfg.S3.Bucket,
			MaxFileSizeMB: cfg.Bulk.MaxFileSizeMB,
			CallTimeout:   cfg.Bulk.CallTimeout(),
		},
		appLog,
	)

	// Setup router
	r := router.Setup(authSvc, router.Handlers{
		Health:     handler.NewHealthHandler(healthChecks...),
		Batch:      handler.NewBatchHandler(bulkSvc, progress, appLog),
		Item:       handler.NewItemHandler(bulkSvc),
		Correction: handler.NewCorrectionHandler(correctionSvc, cacheSvc),
		Cache:      handler.NewCacheHandler(cacheSvc),
		Export:     handler.NewExportHandler(exportSvc),
		Naming:     handler.NewNamingHandler(),
	}, cfg.CORS.AllowedOrigins, appLog)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLog.Info("server starting", "addr", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		exportWorker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Running batches stop after their current item; queued items keep
		// their stored content and resume via POST /bulk-uploads/:id/resume.
		bulkSvc.Shutdown()
		if err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
