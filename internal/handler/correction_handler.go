package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"filewise/internal/service"
	"filewise/internal/statsreport"
)

// CorrectionHandler handles filing correction endpoints.
type CorrectionHandler struct {
	corrections service.CorrectionService
	cache       service.ClassificationCacheService
	now         func() time.Time
}

// NewCorrectionHandler creates a new CorrectionHandler.
func NewCorrectionHandler(corrections service.CorrectionService, cache service.ClassificationCacheService) *CorrectionHandler {
	return &CorrectionHandler{corrections: corrections, cache: cache, now: time.Now}
}

// Capture handles POST /api/v1/corrections
// @Summary Record a filing correction
// @Description Stores the override and invalidates cached classifications for the same content.
// @Tags corrections
// @Accept json
// @Produce json
// @Param body body CaptureCorrectionRequest true "Prediction and correction"
// @Success 201 {object} APIResponse{data=domain.FilingCorrection}
// @Failure 400 {object} APIResponse "No corrected fields or a field does not differ"
// @Security BearerAuth
// @Router /corrections [post]
func (h *CorrectionHandler) Capture(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CaptureCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	corr, err := h.corrections.Capture(c.Request.Context(), &service.CaptureCorrectionInput{
		SourceItemID:     req.SourceItemID,
		FileName:         req.FileName,
		Content:          req.Content,
		ContentHash:      req.ContentHash,
		ContentSummary:   req.ContentSummary,
		ClientType:       req.ClientType,
		AIPrediction:     req.AIPrediction,
		UserCorrection:   req.UserCorrection,
		CorrectedFields:  req.CorrectedFields,
		CorrectionWeight: req.CorrectionWeight,
		CorrectedBy:      userID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, corr)
}

// Get handles GET /api/v1/corrections/:id
func (h *CorrectionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	corr, err := h.corrections.GetCorrection(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, corr)
}

// Relevant handles GET /api/v1/corrections/relevant
func (h *CorrectionHandler) Relevant(c *gin.Context) {
	result, err := h.corrections.GetRelevantCorrections(c.Request.Context(), service.RelevantCorrectionsQuery{
		FileType: c.Query("file_type"),
		Category: c.Query("category"),
		FileName: c.Query("file_name"),
		Limit:    parseLimit(c, 0),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Targeted handles POST /api/v1/corrections/targeted
func (h *CorrectionHandler) Targeted(c *gin.Context) {
	var req TargetedCorrectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.corrections.GetTargetedCorrections(c.Request.Context(), service.TargetedCorrectionsQuery{
		ConfusedBetween: req.ConfusedBetween,
		Current:         req.Current,
		FileName:        req.FileName,
		Limit:           req.Limit,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Rules handles GET /api/v1/corrections/rules
func (h *CorrectionHandler) Rules(c *gin.Context) {
	rules, err := h.corrections.GetConsolidatedRules(c.Request.Context(), service.RuleQuery{
		FileType: c.Query("file_type"),
		Category: c.Query("category"),
		Limit:    parseLimit(c, 0),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rules)
}

// Stats handles GET /api/v1/corrections/stats
func (h *CorrectionHandler) Stats(c *gin.Context) {
	since, ok := parseSince(c)
	if !ok {
		return
	}
	stats, err := h.corrections.GetCorrectionStats(c.Request.Context(), since)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}

// StatsReport handles GET /api/v1/corrections/stats/report
// @Summary Download correction statistics
// @Description Excel workbook with correction counts, cache stats and mined rules.
// @Tags corrections
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param since query string false "Only corrections on or after this date (YYYY-MM-DD or RFC3339)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /corrections/stats/report [get]
func (h *CorrectionHandler) StatsReport(c *gin.Context) {
	since, ok := parseSince(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	stats, err := h.corrections.GetCorrectionStats(ctx, since)
	if err != nil {
		HandleError(c, err)
		return
	}
	cacheStats, err := h.cache.Stats(ctx)
	if err != nil {
		HandleError(c, err)
		return
	}
	rules, err := h.corrections.GetConsolidatedRules(ctx, service.RuleQuery{Limit: 50})
	if err != nil {
		HandleError(c, err)
		return
	}

	now := h.now().UTC()
	var buf bytes.Buffer
	if err := statsreport.Write(&buf, statsreport.Input{
		Corrections: stats,
		Cache:       cacheStats,
		Rules:       rules,
		GeneratedAt: now,
	}); err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("correction-stats_%s.xlsx", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, statsreport.ContentType, buf.Bytes())
}

// parseSince reads the optional since query param as a date or RFC3339
// timestamp. Returns false if it is malformed (error response already written).
func parseSince(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	RespondError(c, http.StatusBadRequest, "INVALID_SINCE", "since must be YYYY-MM-DD or RFC3339")
	return nil, false
}
