package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path"
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

// DefaultCallTimeout bounds every external call made while processing an item.
const DefaultCallTimeout = 120 * time.Second

// QueuedFile is a file waiting to be processed. StorageKey is set once the
// bytes are already in object storage.
type QueuedFile struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
	StorageKey  string
}

// BulkQueueDeps are the collaborators a processor calls for every item.
type BulkQueueDeps struct {
	Batches     port.BatchRepository
	Items       port.ItemRepository
	Storage     port.ObjectStorage
	Classifier  port.Classifier
	Duplicates  port.DuplicateChecker
	Bucket      string
	CallTimeout time.Duration
}

// BulkQueueCallbacks observe processor progress. Any of them may be nil.
type BulkQueueCallbacks struct {
	OnProgress   func(batch domain.BulkUploadBatch)
	OnItemFailed func(batch domain.BulkUploadBatch, itemID uuid.UUID, err error)
	OnComplete   func(batch domain.BulkUploadBatch)
}

// BatchSummary is what ProcessQueue reports once the queue stops.
type BatchSummary struct {
	BatchID   uuid.UUID          `json:"batch_id"`
	Status    domain.BatchStatus `json:"status"`
	Processed int                `json:"processed"`
	Errors    int                `json:"errors"`
	Remaining int                `json:"remaining"`
	Aborted   bool               `json:"aborted"`
}

type queuedItem struct {
	id   uuid.UUID
	file QueuedFile
}

// BulkQueueProcessor drains one batch's queue strictly one item at a time in
// FIFO order. A failing item is marked error and the queue moves on.
type BulkQueueProcessor struct {
	deps BulkQueueDeps
	cb   BulkQueueCallbacks
	log  *logger.Logger

	batch domain.BulkUploadBatch

	mu       sync.Mutex
	queue    []queuedItem
	aborted  bool
	finished bool
}

// NewBulkQueueProcessor creates a processor for batch. The batch counters are
// taken as the starting point and only ever grow.
func NewBulkQueueProcessor(batch domain.BulkUploadBatch, deps BulkQueueDeps, cb BulkQueueCallbacks, log *logger.Logger) *BulkQueueProcessor {
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = DefaultCallTimeout
	}
	return &BulkQueueProcessor{
		deps:  deps,
		cb:    cb,
		log:   log.With("component", "bulkQueueProcessor", "batch_id", batch.ID),
		batch: batch,
	}
}

// AddItem appends a file to the queue. It returns false once the processor
// has stopped; the caller must start a new processor for the item.
func (p *BulkQueueProcessor) AddItem(itemID uuid.UUID, file QueuedFile) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return false
	}
	p.queue = append(p.queue, queuedItem{id: itemID, file: file})
	return true
}

// Abort stops the processor after the in-flight item completes.
func (p *BulkQueueProcessor) Abort() {
	p.mu.Lock()
	p.aborted = true
	p.mu.Unlock()
}

// next pops the head of the queue. When nothing is left, or the processor was
// aborted, it marks the processor finished in the same critical section so a
// concurrent AddItem cannot slip in behind the last item.
func (p *BulkQueueProcessor) next(ctx context.Context) (queuedItem, bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.aborted || ctx.Err() != nil {
		p.finished = true
		return queuedItem{}, false, true
	}
	if len(p.queue) == 0 {
		p.finished = true
		return queuedItem{}, false, false
	}
	it := p.queue[0]
	p.queue = p.queue[1:]
	return it, true, false
}

func (p *BulkQueueProcessor) remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// ProcessQueue drains the queue. It returns early with Aborted set when Abort
// was called or ctx was canceled; the batch then stays processing and the
// completion callback does not fire.
func (p *BulkQueueProcessor) ProcessQueue(ctx context.Context) (*BatchSummary, error) {
	if err := p.setBatchStatus(ctx, domain.BatchStatusProcessing); err != nil {
		p.mu.Lock()
		p.finished = true
		p.mu.Unlock()
		return nil, err
	}
	p.log.Info("bulkQueueProcessor.ProcessQueue: started", "queued", p.remaining())

	summary := &BatchSummary{BatchID: p.batch.ID}
	for {
		it, ok, aborted := p.next(ctx)
		if aborted {
			summary.Aborted = true
			break
		}
		if !ok {
			break
		}

		if err := p.processItem(ctx, it); err != nil {
			p.batch.ErrorFiles++
			summary.Errors++
			p.log.Warn("bulkQueueProcessor.ProcessQueue: item failed", "item_id", it.id, "error", err)
			p.markItemError(ctx, it.id, err)
			if p.cb.OnItemFailed != nil {
				p.cb.OnItemFailed(p.batch, it.id, err)
			}
		} else {
			p.batch.ProcessedFiles++
			summary.Processed++
		}

		if err := p.setBatchStatus(ctx, domain.BatchStatusProcessing); err != nil {
			p.log.Error("bulkQueueProcessor.ProcessQueue: progress update failed", "error", err)
		}
		if p.cb.OnProgress != nil {
			p.cb.OnProgress(p.batch)
		}
	}

	summary.Remaining = p.remaining()
	if summary.Aborted {
		summary.Status = p.batch.Status
		p.log.Info("bulkQueueProcessor.ProcessQueue: aborted",
			"processed", summary.Processed, "errors", summary.Errors, "remaining", summary.Remaining)
		return summary, nil
	}

	if err := p.setBatchStatus(ctx, domain.BatchStatusReview); err != nil {
		return summary, err
	}
	summary.Status = p.batch.Status
	p.log.Info("bulkQueueProcessor.ProcessQueue: queue drained",
		"processed", summary.Processed, "errors", summary.Errors)
	if p.cb.OnComplete != nil {
		p.cb.OnComplete(p.batch)
	}
	return summary, nil
}

func (p *BulkQueueProcessor) setBatchStatus(ctx context.Context, status domain.BatchStatus) error {
	if !p.batch.Status.CanTransitionTo(status) {
		return domain.TransitionError("batch", p.batch.Status, status)
	}
	p.batch.Status = status
	p.batch.UpdatedAt = time.Now().UTC()

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.deps.CallTimeout)
	defer cancel()
	if err := p.deps.Batches.UpdateProgress(callCtx, &p.batch); err != nil {
		return fmt.Errorf("updating batch %s: %w", p.batch.ID, err)
	}
	return nil
}

func (p *BulkQueueProcessor) markItemError(ctx context.Context, itemID uuid.UUID, cause error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.deps.CallTimeout)
	defer cancel()
	if err := p.deps.Items.UpdateStatus(callCtx, itemID, domain.ItemStatusError, cause.Error()); err != nil {
		p.log.Error("bulkQueueProcessor.markItemError: could not record failure", "item_id", itemID, "error", err)
	}
}

// processItem runs the per-item pipeline: upload, classify, sanitize,
// duplicate check, naming and persistence.
func (p *BulkQueueProcessor) processItem(ctx context.Context, it queuedItem) error {
	if err := p.withTimeout(ctx, func(c context.Context) error {
		return p.deps.Items.UpdateStatus(c, it.id, domain.ItemStatusProcessing, "")
	}); err != nil {
		return fmt.Errorf("marking item processing: %w", err)
	}

	key := it.file.StorageKey
	if key == "" {
		key = ItemStorageKey(p.batch.ID, it.id, it.file.FileName)
		if err := p.withTimeout(ctx, func(c context.Context) error {
			_, err := p.deps.Storage.Upload(c, port.UploadInput{
				Bucket:      p.deps.Bucket,
				Key:         key,
				Body:        bytes.NewReader(it.file.Data),
				ContentType: it.file.ContentType,
				Size:        int64(len(it.file.Data)),
			})
			return err
		}); err != nil {
			return fmt.Errorf("uploading file: %w", err)
		}
	}

	hash := fingerprint.Hash(string(it.file.Data))
	var out *port.ClassifyOutput
	if err := p.withTimeout(ctx, func(c context.Context) error {
		var err error
		out, err = p.deps.Classifier.Classify(c, port.ClassifyInput{
			FileName:    it.file.FileName,
			ContentType: it.file.ContentType,
			FileBytes:   it.file.Data,
			ContentHash: hash,
			Context:     classifyContext(&p.batch),
		})
		return err
	}); err != nil {
		return fmt.Errorf("classifying file: %w", err)
	}

	item := &domain.BulkUploadItem{
		ID:                      it.id,
		BatchID:                 p.batch.ID,
		Status:                  domain.ItemStatusReadyForReview,
		OriginalFileName:        it.file.FileName,
		ContentType:             it.file.ContentType,
		FileSize:                it.file.Size,
		StorageKey:              key,
		ContentHash:             hash,
		Summary:                 out.Summary,
		Classification:          out.Classification,
		ClassificationReasoning: out.Reasoning,
		ChecklistMatches:        domain.StringList(out.ChecklistMatches),
		IntelligenceFields:      sanitizeIntelligence(out.IntelligenceFields),
		FromCache:               out.FromCache,
	}

	var dup *domain.DuplicateCheckResult
	if err := p.withTimeout(ctx, func(c context.Context) error {
		var err error
		dup, err = p.deps.Duplicates.Check(c, port.DuplicateCheckInput{
			OriginalFileName: it.file.FileName,
			ClientID:         p.batch.ClientID,
			ProjectID:        p.batch.ProjectID,
		})
		return err
	}); err != nil {
		return fmt.Errorf("checking duplicates: %w", err)
	}

	if dup != nil && dup.IsDuplicate {
		item.IsDuplicate = true
		if m := dup.FirstExact(); m != nil {
			id := m.DocumentID
			item.DuplicateOfDocumentID = &id
		}
	} else {
		item.GeneratedDocumentCode, item.Version = proposeCode(&p.batch, out, time.Now().UTC())
	}

	if err := p.withTimeout(ctx, func(c context.Context) error {
		return p.deps.Items.SaveAnalysis(c, item)
	}); err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}
	return nil
}

// withTimeout bounds a single external call. The in-flight item is never
// interrupted by abort, only by the per-call deadline.
func (p *BulkQueueProcessor) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.deps.CallTimeout)
	defer cancel()
	return fn(callCtx)
}

// proposeCode keeps a well-formed code proposed by the classifier and
// otherwise generates a V1.0 code for the batch destination.
func proposeCode(batch *domain.BulkUploadBatch, out *port.ClassifyOutput, now time.Time) (string, *string) {
	if out.GeneratedDocumentCode != "" {
		if parsed, ok := naming.Parse(out.GeneratedDocumentCode); ok {
			v := parsed.Version
			return out.GeneratedDocumentCode, &v
		}
	}
	v := naming.DefaultVersion
	code := naming.Generate(naming.GenerateInput{
		Shortcode:  batchShortcode(batch),
		Category:   out.Classification.Category,
		IsInternal: effectiveInternal(batch, out.Classification),
		Initials:   batch.UploaderInitials,
		Version:    v,
		Date:       now,
	})
	return code, &v
}

// batchShortcode prefers the project shortcode, then one derived from the
// client name, then the scope itself.
func batchShortcode(batch *domain.BulkUploadBatch) string {
	if sc := strings.TrimSpace(batch.ProjectShortcode); sc != "" {
		return sc
	}
	if sc := naming.ShortcodeFromName(batch.ClientName); sc != "" {
		return sc
	}
	return naming.ShortcodeFromName(string(batch.Scope))
}

func effectiveInternal(batch *domain.BulkUploadBatch, c domain.Classification) bool {
	if c.IsInternal != nil {
		return *c.IsInternal
	}
	return batch.IsInternal
}

func classifyContext(batch *domain.BulkUploadBatch) port.ClassifyContext {
	return port.ClassifyContext{
		ClientName:       batch.ClientName,
		ClientType:       batch.ClientType,
		ProjectName:      batch.ProjectName,
		ProjectShortcode: batch.ProjectShortcode,
		IsInternal:       batch.IsInternal,
		UploaderInitials: batch.UploaderInitials,
		Instructions:     batch.Instructions,
		ChecklistItems:   batch.ChecklistItems,
		Folders:          batch.Folders,
	}
}

// sanitizeIntelligence drops keyless fields, coerces unknown value types to
// text and clamps confidence into [0, 1].
func sanitizeIntelligence(in []domain.IntelligenceField) domain.IntelligenceFields {
	out := make(domain.IntelligenceFields, 0, len(in))
	for _, f := range in {
		if strings.TrimSpace(f.Key) == "" {
			continue
		}
		f.ValueType = domain.NormalizeValueType(string(f.ValueType))
		if math.IsNaN(f.Confidence) || f.Confidence < 0 {
			f.Confidence = 0
		}
		if f.Confidence > 1 {
			f.Confidence = 1
		}
		out = append(out, f)
	}
	return out
}

// ItemStorageKey is where an item's bytes live in object storage.
func ItemStorageKey(batchID, itemID uuid.UUID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("batches/%s/items/%s/%s", batchID, itemID, name)
}
