package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
	"filewise/internal/handler"
	"filewise/internal/service"
	"filewise/mocks"
)

func TestCacheHandler_Check(t *testing.T) {
	cache := new(mocks.MockCacheService)
	h := handler.NewCacheHandler(cache)
	cache.On("Check", mock.Anything, "0a1b2c3d").Return(&service.CacheCheckResult{Hit: false}, nil)

	c, w := newJSONContext(t, http.MethodGet, "/api/v1/classification-cache/0a1b2c3d", nil)
	c.Params = gin.Params{{Key: "hash", Value: "0a1b2c3d"}}

	h.Check(c)

	assert.Equal(t, http.StatusOK, w.Code)
	cache.AssertExpectations(t)
}

func TestCacheHandler_Invalidate_RequiresFilter(t *testing.T) {
	cache := new(mocks.MockCacheService)
	h := handler.NewCacheHandler(cache)
	cache.On("InvalidateByPattern", mock.Anything, domain.CacheInvalidationFilter{ClientType: "fund"}).
		Return(int64(0), domain.ErrInvalidCacheFilter)

	c, w := newJSONContext(t, http.MethodPost, "/api/v1/classification-cache/invalidate", gin.H{"client_type": "fund"})

	h.Invalidate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCacheHandler_Invalidate(t *testing.T) {
	cache := new(mocks.MockCacheService)
	h := handler.NewCacheHandler(cache)
	cache.On("InvalidateByPattern", mock.Anything, domain.CacheInvalidationFilter{Pattern: "report"}).
		Return(int64(4), nil)

	c, w := newJSONContext(t, http.MethodPost, "/api/v1/classification-cache/invalidate", gin.H{"pattern": "report"})

	h.Invalidate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(4), data["invalidated"])
}

func TestCacheHandler_RecordHit_Unknown(t *testing.T) {
	cache := new(mocks.MockCacheService)
	h := handler.NewCacheHandler(cache)
	id := uuid.New()
	cache.On("RecordHit", mock.Anything, id).Return(domain.ErrCacheEntryNotFound)

	c, w := newJSONContext(t, http.MethodPost, "/hit", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.RecordHit(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCacheHandler_Store(t *testing.T) {
	cache := new(mocks.MockCacheService)
	h := handler.NewCacheHandler(cache)
	cache.On("Store", mock.Anything, mock.MatchedBy(func(in *service.StoreCacheInput) bool {
		return in.ContentHash == "0a1b2c3d" && in.Classification.Category == "Track Record"
	})).Return(&domain.ClassificationCacheEntry{ID: uuid.New()}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/api/v1/classification-cache", gin.H{
		"content_hash":   "0a1b2c3d",
		"classification": gin.H{"category": "Track Record", "confidence": 0.9},
	})

	h.Store(c)

	assert.Equal(t, http.StatusOK, w.Code)
	cache.AssertExpectations(t)
}
