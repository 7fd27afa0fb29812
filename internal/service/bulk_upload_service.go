package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
	"filewise/internal/fingerprint"
	"filewise/internal/logger"
	"filewise/internal/naming"
	"filewise/internal/port"
)

// CreateBatchInput is the DTO for opening a bulk upload batch.
type CreateBatchInput struct {
	Scope            domain.BatchScope
	ClientID         *uuid.UUID
	ClientName       string
	ClientType       string
	ProjectID        *uuid.UUID
	ProjectName      string
	ProjectShortcode string
	IsInternal       bool
	ProcessingMode   domain.ProcessingMode
	UploaderInitials string
	Instructions     string
	ChecklistItems   []string
	Folders          []string
	CreatedBy        uuid.UUID
	NotifyEmail      string
}

// FileItemInput is the DTO for filing a reviewed item as a document.
type FileItemInput struct {
	ItemID uuid.UUID
	UserID uuid.UUID
	// Override replaces the AI classification; empty fields keep the AI value.
	Override          *domain.Classification
	AsNewVersion      bool
	SignificantChange bool
}

// BulkUploadConfig holds bulk ingestion limits and storage settings.
type BulkUploadConfig struct {
	Bucket        string
	MaxFileSizeMB int64
	CallTimeout   time.Duration
}

// BulkUploadService owns batches, their items and the processors that drain
// them. At most one processor runs per batch.
type BulkUploadService interface {
	CreateBatch(ctx context.Context, input *CreateBatchInput) (*domain.BulkUploadBatch, error)
	EnqueueFiles(ctx context.Context, batchID uuid.UUID, files []QueuedFile) ([]domain.BulkUploadItem, error)
	AbortBatch(ctx context.Context, batchID uuid.UUID) error
	RetryItem(ctx context.Context, itemID uuid.UUID) (*domain.BulkUploadItem, error)
	// ResumeBatch restarts processing of items an abort or shutdown left
	// unprocessed.
	ResumeBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (*domain.BulkUploadBatch, error)
	ListBatches(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.BulkUploadBatch, int, error)
	ListItems(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*domain.BulkUploadItem, error)
	FileItem(ctx context.Context, input *FileItemInput) (*domain.Document, error)
	// Shutdown aborts every running processor and waits for in-flight items.
	Shutdown()
}

type bulkUploadService struct {
	batches     port.BatchRepository
	items       port.ItemRepository
	documents   port.DocumentRepository
	storage     port.ObjectStorage
	classifier  port.Classifier
	duplicates  port.DuplicateChecker
	corrections CorrectionService
	progress    port.ProgressPublisher
	email       port.EmailSender
	cfg         BulkUploadConfig
	log         *logger.Logger

	mu      sync.Mutex
	running map[uuid.UUID]*BulkQueueProcessor
	wg      sync.WaitGroup
}

// NewBulkUploadService creates a new BulkUploadService implementation.
func NewBulkUploadService(
	batches port.BatchRepository,
	items port.ItemRepository,
	documents port.DocumentRepository,
	storage port.ObjectStorage,
	classifier port.Classifier,
	duplicates port.DuplicateChecker,
	corrections CorrectionService,
	progress port.ProgressPublisher,
	email port.EmailSender,
	cfg BulkUploadConfig,
	log *logger.Logger,
) BulkUploadService {
	return &bulkUploadService{
		batches:     batches,
		items:       items,
		documents:   documents,
		storage:     storage,
		classifier:  classifier,
		duplicates:  duplicates,
		corrections: corrections,
		progress:    progress,
		email:       email,
		cfg:         cfg,
		log:         log.With("component", "bulkUploadService"),
		running:     map[uuid.UUID]*BulkQueueProcessor{},
	}
}

func (s *bulkUploadService) CreateBatch(ctx context.Context, input *CreateBatchInput) (*domain.BulkUploadBatch, error) {
	if !domain.ValidBatchScopes[input.Scope] {
		return nil, domain.ErrInvalidBatchScope
	}
	if (input.Scope == domain.BatchScopeClient || input.Scope == domain.BatchScopeProject) && input.ClientID == nil {
		return nil, domain.ErrClientRequired
	}
	mode := input.ProcessingMode
	if mode == "" {
		mode = domain.ProcessingModeBackground
	}

	now := time.Now().UTC()
	batch := &domain.BulkUploadBatch{
		ID:               uuid.New(),
		Scope:            input.Scope,
		ClientID:         input.ClientID,
		ClientName:       strings.TrimSpace(input.ClientName),
		ClientType:       input.ClientType,
		ProjectID:        input.ProjectID,
		ProjectName:      strings.TrimSpace(input.ProjectName),
		ProjectShortcode: strings.ToUpper(strings.TrimSpace(input.ProjectShortcode)),
		IsInternal:       input.IsInternal || input.Scope == domain.BatchScopeInternal,
		ProcessingMode:   mode,
		UploaderInitials: strings.ToUpper(strings.TrimSpace(input.UploaderInitials)),
		Instructions:     input.Instructions,
		ChecklistItems:   domain.StringList(input.ChecklistItems),
		Folders:          domain.StringList(input.Folders),
		Status:           domain.BatchStatusUploading,
		CreatedBy:        input.CreatedBy,
		NotifyEmail:      input.NotifyEmail,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}
	s.log.Info("bulkUploadService.CreateBatch: batch created", "batch_id", batch.ID, "scope", batch.Scope)
	return batch, nil
}

func (s *bulkUploadService) validateFile(f *QueuedFile) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.FileName)), ".")
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		return fmt.Errorf("%s: %w", f.FileName, domain.ErrUnsupportedFileType)
	}
	if f.ContentType == "" {
		f.ContentType = domain.AllowedFileTypes[ft]
	}
	if f.Size == 0 {
		f.Size = int64(len(f.Data))
	}
	if s.cfg.MaxFileSizeMB > 0 && f.Size > s.cfg.MaxFileSizeMB*1024*1024 {
		return fmt.Errorf("%s: %w", f.FileName, domain.ErrFileTooLarge)
	}
	return nil
}

func (s *bulkUploadService) EnqueueFiles(ctx context.Context, batchID uuid.UUID, files []QueuedFile) ([]domain.BulkUploadItem, error) {
	if len(files) == 0 {
		return nil, domain.ErrEmptyUpload
	}
	for i := range files {
		if err := s.validateFile(&files[i]); err != nil {
			return nil, err
		}
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !batch.Status.CanTransitionTo(domain.BatchStatusProcessing) {
		return nil, domain.TransitionError("batch", batch.Status, domain.BatchStatusProcessing)
	}

	// Bytes go to storage before the item row exists, so every pending item
	// can be resumed from storage after an abort or restart.
	ids := make([]uuid.UUID, len(files))
	for i := range files {
		ids[i] = uuid.New()
		key := ItemStorageKey(batchID, ids[i], files[i].FileName)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader(files[i].Data),
			ContentType: files[i].ContentType,
			Size:        int64(len(files[i].Data)),
		})
		if err != nil {
			return nil, fmt.Errorf("storing %s: %w", files[i].FileName, err)
		}
		files[i].StorageKey = key
	}

	now := time.Now().UTC()
	items := make([]domain.BulkUploadItem, 0, len(files))
	for i := range files {
		item := domain.BulkUploadItem{
			ID:               ids[i],
			BatchID:          batchID,
			Status:           domain.ItemStatusPending,
			OriginalFileName: files[i].FileName,
			ContentType:      files[i].ContentType,
			FileSize:         files[i].Size,
			StorageKey:       files[i].StorageKey,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.items.Create(ctx, &item); err != nil {
			return nil, fmt.Errorf("creating item for %s: %w", files[i].FileName, err)
		}
		items = append(items, item)
	}
	if err := s.batches.AddFiles(ctx, batchID, len(items)); err != nil {
		return nil, fmt.Errorf("updating batch file count: %w", err)
	}

	queued := make([]queuedItem, len(items))
	for i := range items {
		queued[i] = queuedItem{id: items[i].ID, file: files[i]}
	}
	if err := s.dispatch(ctx, batchID, queued); err != nil {
		return nil, err
	}
	return items, nil
}

// dispatch hands items to the batch's running processor, or starts a new one
// for whatever the running processor no longer accepts.
func (s *bulkUploadService) dispatch(ctx context.Context, batchID uuid.UUID, queued []queuedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if proc, ok := s.running[batchID]; ok {
		for len(queued) > 0 && proc.AddItem(queued[0].id, queued[0].file) {
			queued = queued[1:]
		}
		if len(queued) == 0 {
			return nil
		}
	}

	// The processor reads counters from storage, so reload after AddFiles.
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return err
	}
	proc := NewBulkQueueProcessor(*batch, BulkQueueDeps{
		Batches:     s.batches,
		Items:       s.items,
		Storage:     s.storage,
		Classifier:  s.classifier,
		Duplicates:  s.duplicates,
		Bucket:      s.cfg.Bucket,
		CallTimeout: s.cfg.CallTimeout,
	}, s.callbacks(), s.log)
	for _, q := range queued {
		proc.AddItem(q.id, q.file)
	}
	s.running[batchID] = proc

	s.wg.Add(1)
	go s.runProcessor(batchID, proc)
	return nil
}

// runProcessor drains a batch detached from the request that started it.
func (s *bulkUploadService) runProcessor(batchID uuid.UUID, proc *BulkQueueProcessor) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if s.running[batchID] == proc {
			delete(s.running, batchID)
		}
		s.mu.Unlock()
	}()

	summary, err := proc.ProcessQueue(context.Background())
	if err != nil {
		s.log.Error("bulkUploadService.runProcessor: processing failed", "batch_id", batchID, "error", err)
		return
	}
	s.log.Info("bulkUploadService.runProcessor: processor stopped", "batch_id", batchID,
		"status", summary.Status, "processed", summary.Processed, "errors", summary.Errors, "aborted", summary.Aborted)
}

func (s *bulkUploadService) callbacks() BulkQueueCallbacks {
	return BulkQueueCallbacks{
		OnProgress: func(b domain.BulkUploadBatch) {
			s.publish(progressEvent(port.EventBatchProgress, &b, nil, ""))
		},
		OnItemFailed: func(b domain.BulkUploadBatch, itemID uuid.UUID, err error) {
			s.publish(progressEvent(port.EventItemFailed, &b, &itemID, err.Error()))
		},
		OnComplete: func(b domain.BulkUploadBatch) {
			s.publish(progressEvent(port.EventBatchCompleted, &b, nil, ""))
			s.notifyReview(&b)
		},
	}
}

func progressEvent(kind string, b *domain.BulkUploadBatch, itemID *uuid.UUID, msg string) port.BatchProgressEvent {
	return port.BatchProgressEvent{
		Type:           kind,
		BatchID:        b.ID,
		ItemID:         itemID,
		Status:         b.Status,
		TotalFiles:     b.TotalFiles,
		ProcessedFiles: b.ProcessedFiles,
		ErrorFiles:     b.ErrorFiles,
		Message:        msg,
		At:             time.Now().UTC(),
	}
}

func (s *bulkUploadService) publish(event port.BatchProgressEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.progress.Publish(ctx, event); err != nil {
		s.log.Warn("bulkUploadService.publish: progress event dropped", "batch_id", event.BatchID, "type", event.Type, "error", err)
	}
}

func (s *bulkUploadService) notifyReview(b *domain.BulkUploadBatch) {
	if b.NotifyEmail == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.email.SendBatchReviewEmail(ctx, b.NotifyEmail, b); err != nil {
		s.log.Warn("bulkUploadService.notifyReview: email failed", "batch_id", b.ID, "error", err)
	}
}

func (s *bulkUploadService) AbortBatch(_ context.Context, batchID uuid.UUID) error {
	s.mu.Lock()
	proc, ok := s.running[batchID]
	s.mu.Unlock()
	if !ok {
		return domain.ErrBatchNotProcessing
	}
	proc.Abort()
	s.log.Info("bulkUploadService.AbortBatch: abort requested", "batch_id", batchID)
	return nil
}

// RetryItem re-queues a failed item whose bytes reached object storage.
func (s *bulkUploadService) RetryItem(ctx context.Context, itemID uuid.UUID) (*domain.BulkUploadItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.ItemStatusError || item.StorageKey == "" {
		return nil, domain.ErrItemNotRetryable
	}

	data, err := s.storage.Download(ctx, s.cfg.Bucket, item.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("downloading item %s: %w", itemID, err)
	}
	if err := s.items.UpdateStatus(ctx, itemID, domain.ItemStatusPending, ""); err != nil {
		return nil, err
	}
	item.Status = domain.ItemStatusPending
	item.ErrorMessage = ""

	err = s.dispatch(ctx, item.BatchID, []queuedItem{{
		id: item.ID,
		file: storedFile(item, data),
	}})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ResumeBatch re-dispatches the batch's pending items, plus items left
// processing by a stopped process, reading their bytes back from storage.
func (s *bulkUploadService) ResumeBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error) {
	s.mu.Lock()
	_, running := s.running[batchID]
	s.mu.Unlock()
	if running {
		return nil, domain.ErrBatchAlreadyRunning
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !batch.Status.CanTransitionTo(domain.BatchStatusProcessing) {
		return nil, domain.TransitionError("batch", batch.Status, domain.BatchStatusProcessing)
	}

	all, err := s.items.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var resumed []domain.BulkUploadItem
	var queued []queuedItem
	for i := range all {
		it := &all[i]
		if it.Status != domain.ItemStatusPending && it.Status != domain.ItemStatusProcessing {
			continue
		}
		if it.StorageKey == "" {
			s.log.Warn("bulkUploadService.ResumeBatch: item has no stored content", "item_id", it.ID)
			continue
		}
		data, err := s.storage.Download(ctx, s.cfg.Bucket, it.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("downloading item %s: %w", it.ID, err)
		}
		queued = append(queued, queuedItem{id: it.ID, file: storedFile(it, data)})
		resumed = append(resumed, *it)
	}
	if len(queued) == 0 {
		return []domain.BulkUploadItem{}, nil
	}

	if err := s.dispatch(ctx, batchID, queued); err != nil {
		return nil, err
	}
	s.log.Info("bulkUploadService.ResumeBatch: batch resumed", "batch_id", batchID, "items", len(queued))
	return resumed, nil
}

func storedFile(item *domain.BulkUploadItem, data []byte) QueuedFile {
	return QueuedFile{
		FileName:    item.OriginalFileName,
		ContentType: item.ContentType,
		Size:        item.FileSize,
		Data:        data,
		StorageKey:  item.StorageKey,
	}
}

func (s *bulkUploadService) GetBatch(ctx context.Context, batchID uuid.UUID) (*domain.BulkUploadBatch, error) {
	return s.batches.GetByID(ctx, batchID)
}

func (s *bulkUploadService) ListBatches(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.BulkUploadBatch, int, error) {
	return s.batches.ListByCreator(ctx, userID, offset, limit)
}

func (s *bulkUploadService) ListItems(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error) {
	if _, err := s.batches.GetByID(ctx, batchID); err != nil {
		return nil, err
	}
	return s.items.ListByBatch(ctx, batchID)
}

func (s *bulkUploadService) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.BulkUploadItem, error) {
	return s.items.GetByID(ctx, itemID)
}

// FileItem turns a reviewed item into a filed document. Duplicates are only
// filed as a new version of their family; the version always increments from
// the highest version already filed under the same base pattern.
func (s *bulkUploadService) FileItem(ctx context.Context, input *FileItemInput) (*domain.Document, error) {
	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Status.CanTransitionTo(domain.ItemStatusFiled) {
		return nil, domain.ErrItemNotReady
	}
	if item.IsDuplicate && !input.AsNewVersion {
		return nil, domain.ErrDuplicateUnresolved
	}

	batch, err := s.batches.GetByID(ctx, item.BatchID)
	if err != nil {
		return nil, err
	}

	final := mergeOverride(item.Classification, input.Override)
	isInternal := effectiveInternal(batch, final)
	shortcode := batchShortcode(batch)
	base := naming.BasePattern(shortcode, final.Category, isInternal)

	// A duplicate joins the family of the document it duplicates, whatever
	// the current classification says.
	if item.IsDuplicate && item.DuplicateOfDocumentID != nil {
		original, err := s.documents.GetByID(ctx, *item.DuplicateOfDocumentID)
		if err != nil {
			return nil, fmt.Errorf("loading duplicated document: %w", err)
		}
		if original.BasePattern != "" {
			base = original.BasePattern
			isInternal = original.IsInternal
		}
	}

	existing, err := s.documents.ListVersionsByBasePattern(ctx, batch.ClientID, base)
	if err != nil {
		return nil, fmt.Errorf("listing version family %s: %w", base, err)
	}

	now := time.Now().UTC()
	var code, version string
	switch {
	case len(existing) > 0:
		version = naming.NextVersion(existing, input.SignificantChange)
	case input.Override == nil && item.GeneratedDocumentCode != "" && item.Version != nil:
		code, version = item.GeneratedDocumentCode, *item.Version
	default:
		version = naming.DefaultVersion
	}
	if code == "" {
		code = naming.Generate(naming.GenerateInput{
			BasePattern: base,
			Initials:    batch.UploaderInitials,
			Version:     version,
			Date:        now,
		})
	}

	itemID := item.ID
	doc := &domain.Document{
		ID:                 uuid.New(),
		ClientID:           batch.ClientID,
		ProjectID:          batch.ProjectID,
		DocumentCode:       code,
		BasePattern:        base,
		Version:            version,
		OriginalFileName:   item.OriginalFileName,
		FileNameNormalized: fingerprint.NormalizeFilename(item.OriginalFileName),
		FileType:           final.FileType,
		Category:           final.Category,
		TargetFolder:       final.TargetFolder,
		IsInternal:         isInternal,
		StorageKey:         item.StorageKey,
		ContentHash:        item.ContentHash,
		SourceItemID:       &itemID,
		CreatedBy:          input.UserID,
		CreatedAt:          now,
	}
	if err := s.documents.CreateForItem(ctx, doc, item.ID); err != nil {
		return nil, fmt.Errorf("filing document: %w", err)
	}

	if input.Override != nil {
		s.captureOverride(ctx, item, batch, input)
	}
	s.reaggregate(ctx, batch)

	s.log.Info("bulkUploadService.FileItem: item filed",
		"item_id", item.ID, "document_id", doc.ID, "document_code", doc.DocumentCode)
	return doc, nil
}

func mergeOverride(ai domain.Classification, override *domain.Classification) domain.Classification {
	if override == nil {
		return ai
	}
	out := ai
	if override.FileType != "" {
		out.FileType = override.FileType
	}
	if override.Category != "" {
		out.Category = override.Category
	}
	if override.TargetFolder != "" {
		out.TargetFolder = override.TargetFolder
	}
	if override.IsInternal != nil {
		out.IsInternal = override.IsInternal
	}
	if override.SuggestedChecklistItems != nil {
		out.SuggestedChecklistItems = override.SuggestedChecklistItems
	}
	return out
}

// captureOverride records the difference between the AI prediction and the
// reviewer's override. Filing does not fail when capture does.
func (s *bulkUploadService) captureOverride(ctx context.Context, item *domain.BulkUploadItem, batch *domain.BulkUploadBatch, input *FileItemInput) {
	o := input.Override
	corr := domain.UserCorrection{IsInternal: o.IsInternal, ChecklistItems: o.SuggestedChecklistItems}
	if o.FileType != "" {
		corr.FileType = &o.FileType
	}
	if o.Category != "" {
		corr.Category = &o.Category
	}
	if o.TargetFolder != "" {
		corr.TargetFolder = &o.TargetFolder
	}

	pred := domain.PredictionFromClassification(item.Classification)
	if len(domain.DiffFields(pred, corr)) == 0 {
		return
	}

	itemID := item.ID
	_, err := s.corrections.Capture(ctx, &CaptureCorrectionInput{
		SourceItemID:   &itemID,
		FileName:       item.OriginalFileName,
		ContentHash:    item.ContentHash,
		ContentSummary: item.Summary,
		ClientType:     batch.ClientType,
		AIPrediction:   pred,
		UserCorrection: corr,
		CorrectedBy:    input.UserID,
	})
	if err != nil && !errors.Is(err, domain.ErrNoCorrectedFields) {
		s.log.Warn("bulkUploadService.captureOverride: correction not captured", "item_id", item.ID, "error", err)
	}
}

// reaggregate recomputes the batch status from its items after filing.
func (s *bulkUploadService) reaggregate(ctx context.Context, batch *domain.BulkUploadBatch) {
	items, err := s.items.ListByBatch(ctx, batch.ID)
	if err != nil {
		s.log.Warn("bulkUploadService.reaggregate: listing items failed", "batch_id", batch.ID, "error", err)
		return
	}
	statuses := make([]domain.ItemStatus, len(items))
	for i := range items {
		statuses[i] = items[i].Status
	}

	next := domain.AggregateBatchStatus(statuses)
	if next == batch.Status || !batch.Status.CanTransitionTo(next) {
		return
	}
	batch.Status = next
	batch.UpdatedAt = time.Now().UTC()
	if err := s.batches.UpdateProgress(ctx, batch); err != nil {
		s.log.Warn("bulkUploadService.reaggregate: status update failed", "batch_id", batch.ID, "error", err)
		return
	}
	if next == domain.BatchStatusCompleted || next == domain.BatchStatusPartial {
		s.publish(progressEvent(port.EventBatchCompleted, batch, nil, ""))
	}
}

func (s *bulkUploadService) Shutdown() {
	s.mu.Lock()
	for _, proc := range s.running {
		proc.Abort()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

