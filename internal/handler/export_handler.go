package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filewise/internal/service"
)

// ExportHandler handles training export endpoints.
type ExportHandler struct {
	exports service.TrainingExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exports service.TrainingExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create handles POST /api/v1/training-exports
// @Summary Start a training export
// @Description Creates a pending job; the JSONL artifact is generated in the background.
// @Tags training-exports
// @Accept json
// @Produce json
// @Param body body CreateExportRequest true "Export name, format and criteria"
// @Success 202 {object} APIResponse{data=domain.TrainingExportJob}
// @Failure 400 {object} APIResponse "Missing name or unsupported format"
// @Security BearerAuth
// @Router /training-exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	job, err := h.exports.CreateExport(c.Request.Context(), &service.CreateExportInput{
		Name:       req.Name,
		ExportedBy: userID,
		Format:     req.Format,
		Criteria:   req.Criteria,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, job)
}

// List handles GET /api/v1/training-exports
func (h *ExportHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	jobs, err := h.exports.ListExports(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, jobs)
}

// Get handles GET /api/v1/training-exports/:id
func (h *ExportHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.exports.GetExport(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, job)
}
