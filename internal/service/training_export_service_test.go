package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/port"
	"filewise/internal/service"
	"filewise/mocks"
)

type exportFixture struct {
	svc         service.TrainingExportService
	jobs        *mocks.MockExportRepo
	corrections *mocks.MockCorrectionRepo
	storage     *mocks.MockObjectStorage
}

func newExportFixture() *exportFixture {
	f := &exportFixture{
		jobs:        new(mocks.MockExportRepo),
		corrections: new(mocks.MockCorrectionRepo),
		storage:     new(mocks.MockObjectStorage),
	}
	f.svc = service.NewTrainingExportService(f.jobs, f.corrections, f.storage,
		service.TrainingExportConfig{Bucket: "artifacts", PresignExpiry: 900}, logger.Nop())
	return f
}

func pendingJob(format domain.ExportFormat) *domain.TrainingExportJob {
	return &domain.TrainingExportJob{
		ID:           uuid.New(),
		ExportName:   "Q3 Retrain",
		ExportFormat: format,
		Status:       domain.ExportStatusPending,
		Stats:        domain.NewExportStats(),
	}
}

func TestTrainingExportService_CreateExport_Validation(t *testing.T) {
	f := newExportFixture()

	_, err := f.svc.CreateExport(context.Background(), &service.CreateExportInput{Name: "  ", Format: domain.ExportFormatAlpaca})
	assert.ErrorIs(t, err, domain.ErrExportNameRequired)

	_, err = f.svc.CreateExport(context.Background(), &service.CreateExportInput{Name: "x", Format: "csv"})
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)

	f.jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTrainingExportService_CreateExport_ReturnsPendingJob(t *testing.T) {
	f := newExportFixture()
	service.DeferExports(f.svc)

	f.jobs.On("Create", mock.Anything, mock.AnythingOfType("*domain.TrainingExportJob")).Return(nil)

	job, err := f.svc.CreateExport(context.Background(), &service.CreateExportInput{
		Name:   " Q3 Retrain ",
		Format: domain.ExportFormatOpenAIChat,
	})

	require.NoError(t, err)
	assert.Equal(t, "Q3 Retrain", job.ExportName)
	assert.Equal(t, domain.ExportStatusPending, job.Status)
	assert.Nil(t, job.ArtifactKey)
	f.jobs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestTrainingExportService_Generate_WritesMatchingExamples(t *testing.T) {
	f := newExportFixture()
	job := pendingJob(domain.ExportFormatOpenAIChat)
	minWeight := 0.5
	job.Criteria = domain.ExportCriteria{MinWeight: &minWeight}

	keep := correction("q3 track record.pdf", "Other", "Performance", strPtr("Track Record"))
	drop := correction("memo.pdf", "Memo", "Misc", strPtr("Letter"))
	drop.CorrectionWeight = 0.1

	var uploaded string
	f.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)
	f.corrections.On("ListSince", mock.Anything, mock.Anything).Return([]domain.FilingCorrection{keep, drop}, nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "artifacts" && strings.HasPrefix(in.Key, "training-exports/"+job.ID.String()+"/")
	})).Run(func(args mock.Arguments) {
		b, _ := io.ReadAll(args.Get(1).(port.UploadInput).Body)
		uploaded = string(b)
	}).Return(&port.UploadOutput{}, nil)

	require.NoError(t, f.svc.Generate(context.Background(), job.ID))

	assert.Equal(t, domain.ExportStatusCompleted, job.Status)
	assert.Equal(t, 1, job.ExampleCount)
	assert.Equal(t, 1, job.Stats.ByFileType["Track Record"])
	assert.Equal(t, 1, job.Stats.ByCorrectedField[string(domain.FieldFileType)])
	require.NotNil(t, job.ArtifactKey)
	assert.True(t, strings.HasSuffix(*job.ArtifactKey, ".jsonl"))
	assert.NotNil(t, job.CompletedAt)
	assert.Equal(t, 1, strings.Count(uploaded, "\n"))
	assert.Contains(t, uploaded, "q3 track record.pdf")
	assert.NotContains(t, uploaded, "memo.pdf")
}

func TestTrainingExportService_Generate_FailureRecordedOnJob(t *testing.T) {
	f := newExportFixture()
	job := pendingJob(domain.ExportFormatAlpaca)

	f.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)
	f.jobs.On("Update", mock.Anything, job).Return(nil)
	f.corrections.On("ListSince", mock.Anything, mock.Anything).Return(nil, errors.New("db gone"))

	err := f.svc.Generate(context.Background(), job.ID)

	require.Error(t, err)
	assert.Equal(t, domain.ExportStatusError, job.Status)
	assert.Contains(t, job.Error, "db gone")
	assert.Nil(t, job.ArtifactKey)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestTrainingExportService_Generate_RejectsFinishedJob(t *testing.T) {
	f := newExportFixture()
	job := pendingJob(domain.ExportFormatAlpaca)
	job.Status = domain.ExportStatusCompleted

	f.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)

	err := f.svc.Generate(context.Background(), job.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.jobs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTrainingExportService_CreateExport_InlineGeneration(t *testing.T) {
	f := newExportFixture()
	service.RunExportsInline(f.svc)

	var created *domain.TrainingExportJob
	f.jobs.On("Create", mock.Anything, mock.AnythingOfType("*domain.TrainingExportJob")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.TrainingExportJob) }).
		Return(nil)
	getByID := f.jobs.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID"))
	getByID.Run(func(mock.Arguments) { getByID.ReturnArguments = mock.Arguments{created, nil} })
	f.jobs.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.corrections.On("ListSince", mock.Anything, mock.Anything).Return([]domain.FilingCorrection{}, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)

	job, err := f.svc.CreateExport(context.Background(), &service.CreateExportInput{
		Name:   "empty",
		Format: domain.ExportFormatDelimitedPrompt,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ExportStatusCompleted, job.Status)
	assert.Equal(t, 0, job.ExampleCount)
}

func TestTrainingExportService_GetExport_PresignsExistingArtifact(t *testing.T) {
	f := newExportFixture()
	key := "training-exports/x/q3_2026-10-18.jsonl"
	job := pendingJob(domain.ExportFormatAlpaca)
	job.Status = domain.ExportStatusCompleted
	job.ArtifactKey = &key

	f.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)
	f.storage.On("Exists", mock.Anything, "artifacts", key).Return(true, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "artifacts", key, int64(900)).Return("https://signed", nil)

	out, err := f.svc.GetExport(context.Background(), job.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed", out.DownloadURL)
}

func TestTrainingExportService_GetExport_MissingArtifactHasNoURL(t *testing.T) {
	f := newExportFixture()
	key := "training-exports/x/gone.jsonl"
	job := pendingJob(domain.ExportFormatAlpaca)
	job.Status = domain.ExportStatusCompleted
	job.ArtifactKey = &key

	f.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)
	f.storage.On("Exists", mock.Anything, "artifacts", key).Return(false, nil)

	out, err := f.svc.GetExport(context.Background(), job.ID)

	require.NoError(t, err)
	assert.Empty(t, out.DownloadURL)
	f.storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTrainingExportService_GetExport_NotFound(t *testing.T) {
	f := newExportFixture()
	id := uuid.New()
	f.jobs.On("GetByID", mock.Anything, id).Return(nil, domain.ErrExportNotFound)

	_, err := f.svc.GetExport(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrExportNotFound)
}
