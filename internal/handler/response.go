package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"filewise/internal/classifier"
	"filewise/internal/domain"
	"filewise/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response for work that continues in
// the background.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rlErr *classifier.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		return http.StatusTooManyRequests, "CLASSIFIER_RATE_LIMITED", "classification service is rate limited; retry later"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", "operation not allowed in the current state"
	case errors.Is(err, domain.ErrCacheEntryNotFound):
		return http.StatusNotFound, "CACHE_ENTRY_NOT_FOUND", "classification cache entry not found"
	case errors.Is(err, domain.ErrInvalidCacheFilter):
		return http.StatusBadRequest, "INVALID_CACHE_FILTER", "cache invalidation requires a pattern or older_than"
	case errors.Is(err, domain.ErrCorrectionNotFound):
		return http.StatusNotFound, "CORRECTION_NOT_FOUND", "correction not found"
	case errors.Is(err, domain.ErrNoCorrectedFields):
		return http.StatusBadRequest, "NO_CORRECTED_FIELDS", "correction does not change any field"
	case errors.Is(err, domain.ErrInvalidCorrection):
		return http.StatusBadRequest, "INVALID_CORRECTION", "a corrected field does not differ from the AI prediction"
	case errors.Is(err, domain.ErrExportNotFound):
		return http.StatusNotFound, "EXPORT_NOT_FOUND", "training export not found"
	case errors.Is(err, domain.ErrInvalidExportFormat):
		return http.StatusBadRequest, "INVALID_EXPORT_FORMAT", "unsupported export format; allowed: openai_chat, delimited_prompt, alpaca"
	case errors.Is(err, domain.ErrExportNameRequired):
		return http.StatusBadRequest, "EXPORT_NAME_REQUIRED", "export name is required"
	case errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound, "BATCH_NOT_FOUND", "bulk upload batch not found"
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, "ITEM_NOT_FOUND", "bulk upload item not found"
	case errors.Is(err, domain.ErrBatchNotProcessing):
		return http.StatusConflict, "BATCH_NOT_PROCESSING", "batch is not being processed"
	case errors.Is(err, domain.ErrBatchAlreadyRunning):
		return http.StatusConflict, "BATCH_ALREADY_RUNNING", "batch is already being processed"
	case errors.Is(err, domain.ErrItemNotReady):
		return http.StatusConflict, "ITEM_NOT_READY", "item is not ready for review"
	case errors.Is(err, domain.ErrItemNotRetryable):
		return http.StatusConflict, "ITEM_NOT_RETRYABLE", "only failed items can be retried"
	case errors.Is(err, domain.ErrDuplicateUnresolved):
		return http.StatusConflict, "DUPLICATE_UNRESOLVED", "item duplicates a filed document; file it as a new version"
	case errors.Is(err, domain.ErrInvalidBatchScope):
		return http.StatusBadRequest, "INVALID_BATCH_SCOPE", "invalid scope; allowed: client, project, internal, personal"
	case errors.Is(err, domain.ErrClientRequired):
		return http.StatusBadRequest, "CLIENT_REQUIRED", "client_id is required for client and project batches"
	case errors.Is(err, domain.ErrEmptyUpload):
		return http.StatusBadRequest, "EMPTY_UPLOAD", "no files provided"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found"
	case errors.Is(err, domain.ErrClassificationFailed):
		return http.StatusBadGateway, "CLASSIFICATION_FAILED", "classification service failed"
	case errors.Is(err, domain.ErrStreamUnavailable):
		return http.StatusServiceUnavailable, "STREAM_UNAVAILABLE", "progress streaming is not configured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Server errors are attached to the context for the request logger.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		_ = c.Error(err)
	}
	RespondError(c, status, code, msg)
}

// requireUserID extracts the caller's user ID. Returns false if it is
// missing (error response already written).
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a UUID path parameter. Returns false if it is invalid
// (error response already written).
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// parseLimit reads the limit query param, falling back to def when absent
// or not positive.
func parseLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}
