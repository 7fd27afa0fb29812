package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/port"
	"filewise/internal/trainingexport"
)

const exportGenerateTimeout = 10 * time.Minute

// CreateExportInput is the DTO for requesting a training export.
type CreateExportInput struct {
	Name       string
	ExportedBy uuid.UUID
	Format     domain.ExportFormat
	Criteria   domain.ExportCriteria
}

// TrainingExportConfig holds storage settings for export artifacts.
type TrainingExportConfig struct {
	Bucket        string
	PresignExpiry int64
}

// TrainingExportService defines the training data export contract.
type TrainingExportService interface {
	CreateExport(ctx context.Context, input *CreateExportInput) (*domain.TrainingExportJob, error)
	Generate(ctx context.Context, jobID uuid.UUID) error
	GetExport(ctx context.Context, jobID uuid.UUID) (*domain.ExportWithDownload, error)
	ListExports(ctx context.Context, userID uuid.UUID) ([]domain.TrainingExportJob, error)
}

type trainingExportService struct {
	jobs        port.TrainingExportRepository
	corrections port.CorrectionRepository
	storage     port.ObjectStorage
	cfg         TrainingExportConfig
	log         *logger.Logger
	now         func() time.Time
	// async runs background generation; tests replace it to run inline.
	async func(func())
}

// NewTrainingExportService creates a new TrainingExportService implementation.
func NewTrainingExportService(
	jobs port.TrainingExportRepository,
	corrections port.CorrectionRepository,
	storage port.ObjectStorage,
	cfg TrainingExportConfig,
	log *logger.Logger,
) TrainingExportService {
	return &trainingExportService{
		jobs:        jobs,
		corrections: corrections,
		storage:     storage,
		cfg:         cfg,
		log:         log.With("component", "trainingExportService"),
		now:         func() time.Time { return time.Now().UTC() },
		async:       func(fn func()) { go fn() },
	}
}

func (s *trainingExportService) CreateExport(ctx context.Context, input *CreateExportInput) (*domain.TrainingExportJob, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrExportNameRequired
	}
	if !domain.ValidExportFormats[input.Format] {
		return nil, domain.ErrInvalidExportFormat
	}

	now := s.now()
	job := &domain.TrainingExportJob{
		ID:           uuid.New(),
		ExportName:   name,
		ExportedBy:   input.ExportedBy,
		ExportedAt:   now,
		Criteria:     input.Criteria,
		Stats:        domain.NewExportStats(),
		ExportFormat: input.Format,
		Status:       domain.ExportStatusPending,
		UpdatedAt:    now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating export job: %w", err)
	}

	s.log.Info("trainingExportService.CreateExport: job queued", "job_id", job.ID, "format", job.ExportFormat)
	jobID := job.ID
	s.async(func() { s.generateInBackground(jobID) })
	return job, nil
}

// generateInBackground runs Generate detached from the request context.
func (s *trainingExportService) generateInBackground(jobID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), exportGenerateTimeout)
	defer cancel()
	if err := s.Generate(ctx, jobID); err != nil {
		s.log.Error("trainingExportService.generateInBackground: export failed", "job_id", jobID, "error", err)
	}
}

// Generate builds and uploads the artifact for a pending job. Any failure
// after the job starts generating is recorded on the job itself.
func (s *trainingExportService) Generate(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.Status.CanTransitionTo(domain.ExportStatusGenerating) {
		return domain.TransitionError("export", job.Status, domain.ExportStatusGenerating)
	}

	job.Status = domain.ExportStatusGenerating
	job.UpdatedAt = s.now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("marking export %s generating: %w", jobID, err)
	}

	key, stats, genErr := s.buildArtifact(ctx, job)
	if genErr != nil {
		return s.fail(ctx, job, genErr)
	}

	now := s.now()
	job.Status = domain.ExportStatusCompleted
	job.Stats = stats
	job.ExampleCount = stats.TotalExamples
	job.ArtifactKey = &key
	job.CompletedAt = &now
	job.UpdatedAt = now
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("marking export %s completed: %w", jobID, err)
	}

	s.log.Info("trainingExportService.Generate: export completed",
		"job_id", jobID, "examples", stats.TotalExamples, "artifact_key", key)
	return nil
}

func (s *trainingExportService) buildArtifact(ctx context.Context, job *domain.TrainingExportJob) (string, domain.ExportStats, error) {
	stats := domain.NewExportStats()

	all, err := s.corrections.ListSince(ctx, nil)
	if err != nil {
		return "", stats, fmt.Errorf("loading corrections: %w", err)
	}

	var buf bytes.Buffer
	w, err := trainingexport.NewWriter(&buf, job.ExportFormat)
	if err != nil {
		return "", stats, err
	}

	for i := range all {
		c := &all[i]
		if !job.Criteria.Matches(c) {
			continue
		}
		ex := trainingexport.FromCorrection(c)
		if err := w.Write(ex); err != nil {
			return "", stats, fmt.Errorf("serializing correction %s: %w", c.ID, err)
		}
		stats.TotalExamples++
		stats.ByFileType[ex.FileType]++
		stats.ByCategory[ex.Category]++
		for _, f := range c.CorrectedFields {
			stats.ByCorrectedField[string(f)]++
		}
	}

	key := trainingexport.BuildArtifactKey(job.ID, job.ExportName, s.now())
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: "application/x-ndjson",
		Size:        int64(buf.Len()),
	})
	if err != nil {
		return "", stats, fmt.Errorf("uploading artifact: %w", err)
	}
	return key, stats, nil
}

func (s *trainingExportService) fail(ctx context.Context, job *domain.TrainingExportJob, cause error) error {
	job.Status = domain.ExportStatusError
	job.Error = cause.Error()
	job.ArtifactKey = nil
	job.UpdatedAt = s.now()
	if err := s.jobs.Update(ctx, job); err != nil {
		s.log.Error("trainingExportService.fail: could not record failure", "job_id", job.ID, "error", err)
	}
	return fmt.Errorf("export %s: %w", job.ID, cause)
}

func (s *trainingExportService) GetExport(ctx context.Context, jobID uuid.UUID) (*domain.ExportWithDownload, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := &domain.ExportWithDownload{TrainingExportJob: *job}
	if job.Status != domain.ExportStatusCompleted || job.ArtifactKey == nil {
		return out, nil
	}

	exists, err := s.storage.Exists(ctx, s.cfg.Bucket, *job.ArtifactKey)
	if err != nil {
		s.log.Warn("trainingExportService.GetExport: artifact lookup failed", "job_id", jobID, "error", err)
		return out, nil
	}
	if !exists {
		return out, nil
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, *job.ArtifactKey, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning artifact: %w", err)
	}
	out.DownloadURL = url
	return out, nil
}

func (s *trainingExportService) ListExports(ctx context.Context, userID uuid.UUID) ([]domain.TrainingExportJob, error) {
	jobs, err := s.jobs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	return jobs, nil
}
