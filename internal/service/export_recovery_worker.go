package service

import (
	"context"
	"sync"
	"time"

	"filewise/internal/logger"
	"filewise/internal/port"
)

// ExportRecoveryConfig holds settings for the export recovery worker.
type ExportRecoveryConfig struct {
	PollInterval time.Duration
	StaleAfter   time.Duration
	Concurrency  int
}

// ExportRecoveryWorker picks up export jobs whose background generation was
// lost, typically to a restart, and runs them again.
type ExportRecoveryWorker struct {
	jobs    port.TrainingExportRepository
	exports TrainingExportService
	cfg     ExportRecoveryConfig
	log     *logger.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewExportRecoveryWorker creates a new ExportRecoveryWorker.
func NewExportRecoveryWorker(
	jobs port.TrainingExportRepository,
	exports TrainingExportService,
	cfg ExportRecoveryConfig,
	log *logger.Logger,
) *ExportRecoveryWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	return &ExportRecoveryWorker{
		jobs:    jobs,
		exports: exports,
		cfg:     cfg,
		log:     log.With("component", "exportRecoveryWorker"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight generations have finished.
func (w *ExportRecoveryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	w.log.Info("exportRecoveryWorker.Start: started",
		"poll", w.cfg.PollInterval, "stale_after", w.cfg.StaleAfter, "concurrency", w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("exportRecoveryWorker.Start: shutting down, waiting for in-flight exports")
			w.wg.Wait()
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *ExportRecoveryWorker) poll(ctx context.Context, sem chan struct{}) {
	available := cap(sem) - len(sem)
	if available <= 0 {
		return
	}

	jobs, err := w.jobs.ClaimStale(ctx, w.now().Add(-w.cfg.StaleAfter), available)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("exportRecoveryWorker.poll: claim failed", "error", err)
		}
		return
	}

	for i := range jobs {
		jobID := jobs[i].ID
		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// Detached so a generation in flight finishes during shutdown.
			genCtx, cancel := context.WithTimeout(context.Background(), exportGenerateTimeout)
			defer cancel()

			w.log.Info("exportRecoveryWorker.poll: regenerating export", "job_id", jobID)
			if err := w.exports.Generate(genCtx, jobID); err != nil {
				w.log.Error("exportRecoveryWorker.poll: regeneration failed", "job_id", jobID, "error", err)
			}
		}()
	}
}
