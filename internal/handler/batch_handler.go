package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"filewise/internal/logger"
	"filewise/internal/middleware"
	"filewise/internal/port"
	"filewise/internal/service"
)

const sseHeartbeat = 15 * time.Second

// BatchHandler handles bulk upload batch endpoints.
type BatchHandler struct {
	bulk     service.BulkUploadService
	progress port.ProgressSubscriber
	log      *logger.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(bulk service.BulkUploadService, progress port.ProgressSubscriber, log *logger.Logger) *BatchHandler {
	return &BatchHandler{bulk: bulk, progress: progress, log: log}
}

// Create handles POST /api/v1/bulk-uploads
// @Summary Create a bulk upload batch
// @Tags bulk-uploads
// @Accept json
// @Produce json
// @Param body body CreateBatchRequest true "Batch destination and context"
// @Success 201 {object} APIResponse{data=domain.BulkUploadBatch}
// @Failure 400 {object} APIResponse "Invalid scope or missing client"
// @Security BearerAuth
// @Router /bulk-uploads [post]
func (h *BatchHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	input := &service.CreateBatchInput{
		Scope:            req.Scope,
		ClientID:         req.ClientID,
		ClientName:       req.ClientName,
		ClientType:       req.ClientType,
		ProjectID:        req.ProjectID,
		ProjectName:      req.ProjectName,
		ProjectShortcode: req.ProjectShortcode,
		IsInternal:       req.IsInternal,
		ProcessingMode:   req.ProcessingMode,
		UploaderInitials: req.UploaderInitials,
		Instructions:     req.Instructions,
		ChecklistItems:   req.ChecklistItems,
		Folders:          req.Folders,
		CreatedBy:        userID,
	}
	if req.Notify {
		input.NotifyEmail = middleware.GetEmail(c)
	}

	batch, err := h.bulk.CreateBatch(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, batch)
}

// List handles GET /api/v1/bulk-uploads
func (h *BatchHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	batches, total, err := h.bulk.ListBatches(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, batches, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/bulk-uploads/:id
func (h *BatchHandler) Get(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	batch, err := h.bulk.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batch)
}

// Upload handles POST /api/v1/bulk-uploads/:id/files
// @Summary Add files to a batch
// @Description Queues every "files" part of the multipart form. Processing starts in the background.
// @Tags bulk-uploads
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Batch ID"
// @Param files formData file true "Files to classify"
// @Success 202 {object} APIResponse{data=[]domain.BulkUploadItem}
// @Failure 400 {object} APIResponse "No files or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Security BearerAuth
// @Router /bulk-uploads/{id}/files [post]
func (h *BatchHandler) Upload(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart form with files is required")
		return
	}

	headers := form.File["files"]
	files := make([]service.QueuedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read "+fh.Filename)
			return
		}
		files = append(files, service.QueuedFile{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Data:        data,
		})
	}

	items, err := h.bulk.EnqueueFiles(c.Request.Context(), batchID, files)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, items)
}

// Abort handles POST /api/v1/bulk-uploads/:id/abort
func (h *BatchHandler) Abort(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.bulk.AbortBatch(c.Request.Context(), batchID); err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, gin.H{"batch_id": batchID, "aborting": true})
}

// Resume handles POST /api/v1/bulk-uploads/:id/resume
func (h *BatchHandler) Resume(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.bulk.ResumeBatch(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, items)
}

// ListItems handles GET /api/v1/bulk-uploads/:id/items
func (h *BatchHandler) ListItems(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.bulk.ListItems(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, items)
}

// Events handles GET /api/v1/bulk-uploads/:id/events
// @Summary Stream batch progress
// @Description Server-sent events for one batch until the client disconnects.
// @Tags bulk-uploads
// @Produce text/event-stream
// @Param id path string true "Batch ID"
// @Failure 503 {object} APIResponse "Streaming not configured"
// @Security BearerAuth
// @Router /bulk-uploads/{id}/events [get]
func (h *BatchHandler) Events(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.bulk.GetBatch(ctx, batchID); err != nil {
		HandleError(c, err)
		return
	}
	events, err := h.progress.Subscribe(ctx)
	if err != nil {
		HandleError(c, err)
		return
	}

	// The stream outlives server.write_timeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.log.Debug("batchHandler.Events: clearing write deadline failed", "batch_id", batchID, "error", err)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			if ev.BatchID != batchID {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("batchHandler.Events: marshal failed", "batch_id", batchID, "error", err)
				continue
			}
			_, _ = fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			c.Writer.Flush()
		}
	}
}
