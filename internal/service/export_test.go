package service

import (
	"context"
	"time"
)

// RunExportsInline makes CreateExport generate synchronously.
func RunExportsInline(s TrainingExportService) {
	s.(*trainingExportService).async = func(fn func()) { fn() }
}

// DeferExports makes CreateExport skip background generation.
func DeferExports(s TrainingExportService) {
	s.(*trainingExportService).async = func(func()) {}
}

// PollOnce runs a single recovery poll.
func PollOnce(ctx context.Context, w *ExportRecoveryWorker, now time.Time) {
	w.now = func() time.Time { return now }
	w.poll(ctx, make(chan struct{}, w.cfg.Concurrency))
	w.wg.Wait()
}
