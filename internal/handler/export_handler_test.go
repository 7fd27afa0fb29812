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

func TestExportHandler_Create(t *testing.T) {
	exports := new(mocks.MockExportService)
	h := handler.NewExportHandler(exports)
	userID := uuid.New()

	exports.On("CreateExport", mock.Anything, mock.MatchedBy(func(in *service.CreateExportInput) bool {
		return in.ExportedBy == userID && in.Format == domain.ExportFormatAlpaca &&
			in.Criteria.MinWeight != nil && *in.Criteria.MinWeight == 0.5
	})).Return(&domain.TrainingExportJob{ID: uuid.New(), Status: domain.ExportStatusPending}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/api/v1/training-exports", gin.H{
		"name":     "October",
		"format":   "alpaca",
		"criteria": gin.H{"min_weight": 0.5},
	})
	setAuthContext(c, userID, "admin")

	h.Create(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	exports.AssertExpectations(t)
}

func TestExportHandler_Create_BadFormat(t *testing.T) {
	exports := new(mocks.MockExportService)
	h := handler.NewExportHandler(exports)
	exports.On("CreateExport", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidExportFormat)

	c, w := newJSONContext(t, http.MethodPost, "/api/v1/training-exports", gin.H{"name": "x", "format": "csv"})
	setAuthContext(c, uuid.New(), "admin")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandler_Get(t *testing.T) {
	exports := new(mocks.MockExportService)
	h := handler.NewExportHandler(exports)
	id := uuid.New()
	exports.On("GetExport", mock.Anything, id).Return(&domain.ExportWithDownload{
		TrainingExportJob: domain.TrainingExportJob{ID: id},
		DownloadURL:       "https://example.com/a.jsonl",
	}, nil)

	c, w := newJSONContext(t, http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "https://example.com/a.jsonl", data["download_url"])
}
