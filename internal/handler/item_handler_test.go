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

func TestItemHandler_File_WithOverride(t *testing.T) {
	bulk := new(mocks.MockBulkUploadService)
	h := handler.NewItemHandler(bulk)
	userID := uuid.New()
	itemID := uuid.New()

	bulk.On("FileItem", mock.Anything, mock.MatchedBy(func(in *service.FileItemInput) bool {
		return in.ItemID == itemID && in.UserID == userID &&
			in.Override != nil && in.Override.Category == "Track Record" &&
			in.AsNewVersion
	})).Return(&domain.Document{ID: uuid.New(), DocumentCode: "ACME-TR-EXT-JD-V1.1-2026-01-01"}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/file", gin.H{
		"override":       gin.H{"category": "Track Record"},
		"as_new_version": true,
	})
	c.Params = gin.Params{{Key: "id", Value: itemID.String()}}
	setAuthContext(c, userID, "member")

	h.File(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	bulk.AssertExpectations(t)
}

func TestItemHandler_File_EmptyBody(t *testing.T) {
	bulk := new(mocks.MockBulkUploadService)
	h := handler.NewItemHandler(bulk)
	itemID := uuid.New()

	bulk.On("FileItem", mock.Anything, mock.MatchedBy(func(in *service.FileItemInput) bool {
		return in.Override == nil && !in.AsNewVersion
	})).Return(nil, domain.ErrDuplicateUnresolved)

	c, w := newJSONContext(t, http.MethodPost, "/file", nil)
	c.Params = gin.Params{{Key: "id", Value: itemID.String()}}
	setAuthContext(c, uuid.New(), "member")

	h.File(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_UNRESOLVED", decodeResponse(t, w).Error.Code)
}

func TestItemHandler_Retry_NotRetryable(t *testing.T) {
	bulk := new(mocks.MockBulkUploadService)
	h := handler.NewItemHandler(bulk)
	itemID := uuid.New()
	bulk.On("RetryItem", mock.Anything, itemID).Return(nil, domain.ErrItemNotRetryable)

	c, w := newJSONContext(t, http.MethodPost, "/retry", nil)
	c.Params = gin.Params{{Key: "id", Value: itemID.String()}}

	h.Retry(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestItemHandler_Get_NotFound(t *testing.T) {
	bulk := new(mocks.MockBulkUploadService)
	h := handler.NewItemHandler(bulk)
	itemID := uuid.New()
	bulk.On("GetItem", mock.Anything, itemID).Return(nil, domain.ErrItemNotFound)

	c, w := newJSONContext(t, http.MethodGet, "/item", nil)
	c.Params = gin.Params{{Key: "id", Value: itemID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
