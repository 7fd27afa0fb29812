package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filewise/internal/domain"
	"filewise/internal/service"
)

// CacheHandler handles classification cache endpoints.
type CacheHandler struct {
	cache service.ClassificationCacheService
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(cache service.ClassificationCacheService) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// Check handles GET /api/v1/classification-cache/:hash
func (h *CacheHandler) Check(c *gin.Context) {
	result, err := h.cache.Check(c.Request.Context(), c.Param("hash"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Store handles POST /api/v1/classification-cache
func (h *CacheHandler) Store(c *gin.Context) {
	var req StoreCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	entry, err := h.cache.Store(c.Request.Context(), &service.StoreCacheInput{
		ContentHash:     req.ContentHash,
		FileNamePattern: req.FileNamePattern,
		Classification:  req.Classification,
		ClientType:      req.ClientType,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, entry)
}

// RecordHit handles POST /api/v1/classification-cache/entries/:id/hit
func (h *CacheHandler) RecordHit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.cache.RecordHit(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// InvalidateByHash handles DELETE /api/v1/classification-cache/:hash
func (h *CacheHandler) InvalidateByHash(c *gin.Context) {
	n, err := h.cache.InvalidateByHash(c.Request.Context(), c.Param("hash"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"invalidated": n})
}

// Invalidate handles POST /api/v1/classification-cache/invalidate
// @Summary Sweep the classification cache
// @Description Invalidates entries whose pattern contains the given text or that were not used since older_than.
// @Tags classification-cache
// @Accept json
// @Produce json
// @Param body body InvalidateCacheRequest true "Sweep filter"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse "Neither pattern nor older_than given"
// @Security BearerAuth
// @Router /classification-cache/invalidate [post]
func (h *CacheHandler) Invalidate(c *gin.Context) {
	var req InvalidateCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	n, err := h.cache.InvalidateByPattern(c.Request.Context(), domain.CacheInvalidationFilter{
		Pattern:    req.Pattern,
		ClientType: req.ClientType,
		OlderThan:  req.OlderThan,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"invalidated": n})
}

// Stats handles GET /api/v1/classification-cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	stats, err := h.cache.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}
