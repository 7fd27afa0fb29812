package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidTransition   = errors.New("invalid status transition")

	// Classification cache
	ErrCacheEntryNotFound = errors.New("classification cache entry not found")
	ErrInvalidCacheFilter = errors.New("cache invalidation requires a pattern or a cutoff date")

	// Corrections
	ErrCorrectionNotFound = errors.New("correction not found")
	ErrNoCorrectedFields  = errors.New("correction does not change any field")
	ErrInvalidCorrection  = errors.New("corrected field does not differ from the AI prediction")
	ErrSearchUnavailable  = errors.New("full-text search unavailable")

	// Training exports
	ErrExportNotFound      = errors.New("training export not found")
	ErrInvalidExportFormat = errors.New("unsupported training export format")
	ErrExportNameRequired  = errors.New("training export name is required")

	// Bulk upload
	ErrBatchNotFound        = errors.New("bulk upload batch not found")
	ErrItemNotFound         = errors.New("bulk upload item not found")
	ErrBatchNotProcessing   = errors.New("bulk upload batch is not being processed")
	ErrBatchAlreadyRunning  = errors.New("bulk upload batch is already being processed")
	ErrItemNotReady         = errors.New("bulk upload item is not ready for review")
	ErrItemNotRetryable     = errors.New("only failed items with stored content can be retried")
	ErrDuplicateUnresolved  = errors.New("item is a duplicate; file it as a new version or discard it")
	ErrInvalidBatchScope    = errors.New("invalid batch scope")
	ErrClientRequired       = errors.New("client is required for client and project batches")
	ErrEmptyUpload          = errors.New("no files provided")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrClassificationFailed = errors.New("classification service failed")
	ErrStreamUnavailable    = errors.New("progress streaming is not configured")
)
