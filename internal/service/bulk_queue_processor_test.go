package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/naming"
	"filewise/internal/port"
	"filewise/internal/service"
	"filewise/mocks"
)

type processorFixture struct {
	batches    *mocks.MockBatchRepo
	items      *mocks.MockItemRepo
	storage    *mocks.MockObjectStorage
	classifier *mocks.MockClassifier
	duplicates *mocks.MockDuplicateChecker
	batch      domain.BulkUploadBatch
}

func newProcessorFixture() *processorFixture {
	clientID := uuid.New()
	f := &processorFixture{
		batches:    new(mocks.MockBatchRepo),
		items:      new(mocks.MockItemRepo),
		storage:    new(mocks.MockObjectStorage),
		classifier: new(mocks.MockClassifier),
		duplicates: new(mocks.MockDuplicateChecker),
		batch: domain.BulkUploadBatch{
			ID:               uuid.New(),
			Scope:            domain.BatchScopeProject,
			ClientID:         &clientID,
			ClientName:       "Acme Capital",
			ProjectShortcode: "ACME",
			UploaderInitials: "JD",
			TotalFiles:       3,
			Status:           domain.BatchStatusUploading,
		},
	}
	f.batches.On("UpdateProgress", mock.Anything, mock.AnythingOfType("*domain.BulkUploadBatch")).Return(nil)
	f.items.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("domain.ItemStatus"), mock.AnythingOfType("string")).Return(nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	return f
}

func (f *processorFixture) processor(cb service.BulkQueueCallbacks) *service.BulkQueueProcessor {
	return service.NewBulkQueueProcessor(f.batch, service.BulkQueueDeps{
		Batches:    f.batches,
		Items:      f.items,
		Storage:    f.storage,
		Classifier: f.classifier,
		Duplicates: f.duplicates,
		Bucket:     "uploads",
	}, cb, logger.Nop())
}

func pdf(name string) service.QueuedFile {
	return service.QueuedFile{FileName: name, ContentType: "application/pdf", Data: []byte("body of " + name)}
}

func isFile(name string) interface{} {
	return mock.MatchedBy(func(in port.ClassifyInput) bool { return in.FileName == name })
}

func TestBulkQueueProcessor_FailingItemDoesNotStopQueue(t *testing.T) {
	f := newProcessorFixture()
	out := &port.ClassifyOutput{Classification: domain.Classification{FileType: "Report", Category: "Investor Report", Confidence: 0.9}}
	f.classifier.On("Classify", mock.Anything, isFile("one.pdf")).Return(out, nil)
	f.classifier.On("Classify", mock.Anything, isFile("two.pdf")).Return(nil, errors.New("upstream exploded"))
	f.classifier.On("Classify", mock.Anything, isFile("three.pdf")).Return(out, nil)
	f.duplicates.On("Check", mock.Anything, mock.Anything).Return(&domain.DuplicateCheckResult{}, nil)
	f.items.On("SaveAnalysis", mock.Anything, mock.AnythingOfType("*domain.BulkUploadItem")).Return(nil)

	var completed *domain.BulkUploadBatch
	var failed []uuid.UUID
	p := f.processor(service.BulkQueueCallbacks{
		OnItemFailed: func(_ domain.BulkUploadBatch, id uuid.UUID, _ error) { failed = append(failed, id) },
		OnComplete:   func(b domain.BulkUploadBatch) { completed = &b },
	})
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, name := range []string{"one.pdf", "two.pdf", "three.pdf"} {
		require.True(t, p.AddItem(ids[i], pdf(name)))
	}

	summary, err := p.ProcessQueue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Errors)
	assert.False(t, summary.Aborted)
	assert.Equal(t, domain.BatchStatusReview, summary.Status)

	require.NotNil(t, completed)
	assert.Equal(t, 2, completed.ProcessedFiles)
	assert.Equal(t, 1, completed.ErrorFiles)
	assert.Equal(t, domain.BatchStatusReview, completed.Status)
	assert.Equal(t, []uuid.UUID{ids[1]}, failed)

	f.items.AssertCalled(t, "UpdateStatus", mock.Anything, ids[1], domain.ItemStatusError,
		mock.MatchedBy(func(msg string) bool { return msg != "" }))
	f.items.AssertNumberOfCalls(t, "SaveAnalysis", 2)
	assert.False(t, p.AddItem(uuid.New(), pdf("late.pdf")))
}

func TestBulkQueueProcessor_ProposesCodeForNewDocuments(t *testing.T) {
	f := newProcessorFixture()
	f.classifier.On("Classify", mock.Anything, mock.Anything).Return(&port.ClassifyOutput{
		Classification: domain.Classification{FileType: "Report", Category: "Track Record", Confidence: 0.8},
		IntelligenceFields: []domain.IntelligenceField{
			{Key: "", Label: "dropped"},
			{Key: "irr", ValueType: "mystery", Confidence: 1.7},
		},
	}, nil)
	f.duplicates.On("Check", mock.Anything, port.DuplicateCheckInput{
		OriginalFileName: "tr.pdf",
		ClientID:         f.batch.ClientID,
	}).Return(&domain.DuplicateCheckResult{}, nil)

	var saved *domain.BulkUploadItem
	f.items.On("SaveAnalysis", mock.Anything, mock.AnythingOfType("*domain.BulkUploadItem")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.BulkUploadItem) }).
		Return(nil)

	p := f.processor(service.BulkQueueCallbacks{})
	itemID := uuid.New()
	p.AddItem(itemID, pdf("tr.pdf"))

	_, err := p.ProcessQueue(context.Background())

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, domain.ItemStatusReadyForReview, saved.Status)
	assert.Equal(t, service.ItemStorageKey(f.batch.ID, itemID, "tr.pdf"), saved.StorageKey)
	assert.NotEmpty(t, saved.ContentHash)
	require.NotNil(t, saved.Version)
	assert.Equal(t, naming.DefaultVersion, *saved.Version)
	parsed, ok := naming.Parse(saved.GeneratedDocumentCode)
	require.True(t, ok, saved.GeneratedDocumentCode)
	assert.Equal(t, "ACME", parsed.Shortcode)
	require.Len(t, saved.IntelligenceFields, 1)
	assert.Equal(t, domain.ValueTypeText, saved.IntelligenceFields[0].ValueType)
	assert.Equal(t, 1.0, saved.IntelligenceFields[0].Confidence)
}

func TestBulkQueueProcessor_DuplicateGetsNoVersion(t *testing.T) {
	f := newProcessorFixture()
	existing := uuid.New()
	f.classifier.On("Classify", mock.Anything, mock.Anything).Return(&port.ClassifyOutput{
		Classification:        domain.Classification{FileType: "Report", Category: "Track Record"},
		GeneratedDocumentCode: "ACME-TR-EXT-JD-V1.0-2026-01-01",
	}, nil)
	f.duplicates.On("Check", mock.Anything, mock.Anything).Return(&domain.DuplicateCheckResult{
		IsDuplicate:   true,
		HasExactMatch: true,
		Matches: []domain.DuplicateMatch{
			{DocumentID: uuid.New(), MatchType: domain.MatchTypeSimilar},
			{DocumentID: existing, MatchType: domain.MatchTypeExact},
		},
	}, nil)

	var saved *domain.BulkUploadItem
	f.items.On("SaveAnalysis", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.BulkUploadItem) }).
		Return(nil)

	p := f.processor(service.BulkQueueCallbacks{})
	p.AddItem(uuid.New(), pdf("tr.pdf"))

	_, err := p.ProcessQueue(context.Background())

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.IsDuplicate)
	assert.Nil(t, saved.Version)
	assert.Empty(t, saved.GeneratedDocumentCode)
	require.NotNil(t, saved.DuplicateOfDocumentID)
	assert.Equal(t, existing, *saved.DuplicateOfDocumentID)
}

func TestBulkQueueProcessor_AbortLeavesQueueAndSkipsCompletion(t *testing.T) {
	f := newProcessorFixture()
	completed := false
	p := f.processor(service.BulkQueueCallbacks{OnComplete: func(domain.BulkUploadBatch) { completed = true }})
	p.AddItem(uuid.New(), pdf("a.pdf"))
	p.AddItem(uuid.New(), pdf("b.pdf"))
	p.Abort()

	summary, err := p.ProcessQueue(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Aborted)
	assert.Equal(t, 2, summary.Remaining)
	assert.Equal(t, domain.BatchStatusProcessing, summary.Status)
	assert.False(t, completed)
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestBulkQueueProcessor_AbortWaitsForInFlightItem(t *testing.T) {
	f := newProcessorFixture()
	first, second := uuid.New(), uuid.New()
	completed := false
	var p *service.BulkQueueProcessor
	p = f.processor(service.BulkQueueCallbacks{OnComplete: func(domain.BulkUploadBatch) { completed = true }})
	p.AddItem(first, pdf("a.pdf"))
	p.AddItem(second, pdf("b.pdf"))

	f.classifier.On("Classify", mock.Anything, isFile("a.pdf")).
		Run(func(mock.Arguments) { p.Abort() }).
		Return(&port.ClassifyOutput{Classification: domain.Classification{FileType: "Report", Category: "Investor Report"}}, nil)
	f.duplicates.On("Check", mock.Anything, mock.Anything).Return(&domain.DuplicateCheckResult{}, nil)
	f.items.On("SaveAnalysis", mock.Anything, mock.MatchedBy(func(it *domain.BulkUploadItem) bool { return it.ID == first })).Return(nil)

	summary, err := p.ProcessQueue(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Aborted)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Remaining)
	assert.Equal(t, domain.BatchStatusProcessing, summary.Status)
	assert.False(t, completed)
	f.items.AssertNumberOfCalls(t, "SaveAnalysis", 1)
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, isFile("b.pdf"))
	f.items.AssertNotCalled(t, "UpdateStatus", mock.Anything, second, mock.Anything, mock.Anything)
}

func TestBulkQueueProcessor_StoredFileIsNotUploadedAgain(t *testing.T) {
	f := newProcessorFixture()
	f.classifier.On("Classify", mock.Anything, isFile("a.pdf")).
		Return(&port.ClassifyOutput{Classification: domain.Classification{FileType: "Report", Category: "Investor Report"}}, nil)
	f.duplicates.On("Check", mock.Anything, mock.Anything).Return(&domain.DuplicateCheckResult{}, nil)
	var saved *domain.BulkUploadItem
	f.items.On("SaveAnalysis", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.BulkUploadItem) }).
		Return(nil)

	file := pdf("a.pdf")
	file.StorageKey = "batches/b/items/i/a.pdf"
	p := f.processor(service.BulkQueueCallbacks{})
	p.AddItem(uuid.New(), file)

	_, err := p.ProcessQueue(context.Background())

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, file.StorageKey, saved.StorageKey)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestBulkQueueProcessor_CompletedBatchCannotRestart(t *testing.T) {
	f := newProcessorFixture()
	f.batch.Status = domain.BatchStatusCompleted
	p := f.processor(service.BulkQueueCallbacks{})

	_, err := p.ProcessQueue(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.False(t, p.AddItem(uuid.New(), pdf("a.pdf")))
}

func TestItemStorageKey_UsesBaseName(t *testing.T) {
	b, i := uuid.New(), uuid.New()
	assert.Equal(t, "batches/"+b.String()+"/items/"+i.String()+"/memo.pdf",
		service.ItemStorageKey(b, i, `C:\Users\jd\memo.pdf`))
}
