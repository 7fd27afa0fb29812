package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filewise/internal/service"
)

// ItemHandler handles bulk upload item endpoints.
type ItemHandler struct {
	bulk service.BulkUploadService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(bulk service.BulkUploadService) *ItemHandler {
	return &ItemHandler{bulk: bulk}
}

// Get handles GET /api/v1/bulk-items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.bulk.GetItem(c.Request.Context(), itemID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, item)
}

// Retry handles POST /api/v1/bulk-items/:id/retry
func (h *ItemHandler) Retry(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.bulk.RetryItem(c.Request.Context(), itemID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, item)
}

// File handles POST /api/v1/bulk-items/:id/file
// @Summary File a reviewed item
// @Description Accepts the AI classification or an override. Duplicates must be filed as a new version.
// @Tags bulk-items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param body body FileItemRequest false "Review decision"
// @Success 201 {object} APIResponse{data=domain.Document}
// @Failure 409 {object} APIResponse "Item not ready or unresolved duplicate"
// @Security BearerAuth
// @Router /bulk-items/{id}/file [post]
func (h *ItemHandler) File(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req FileItemRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	doc, err := h.bulk.FileItem(c.Request.Context(), &service.FileItemInput{
		ItemID:            itemID,
		UserID:            userID,
		Override:          req.Override,
		AsNewVersion:      req.AsNewVersion,
		SignificantChange: req.SignificantChange,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, doc)
}
