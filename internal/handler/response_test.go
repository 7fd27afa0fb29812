package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"filewise/internal/classifier"
	"filewise/internal/domain"
	"filewise/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrBatchNotFound, http.StatusNotFound, "BATCH_NOT_FOUND"},
		{fmt.Errorf("batchRepo.GetByID: %w", domain.ErrBatchNotFound), http.StatusNotFound, "BATCH_NOT_FOUND"},
		{domain.ErrItemNotReady, http.StatusConflict, "ITEM_NOT_READY"},
		{domain.ErrDuplicateUnresolved, http.StatusConflict, "DUPLICATE_UNRESOLVED"},
		{domain.ErrInvalidCacheFilter, http.StatusBadRequest, "INVALID_CACHE_FILTER"},
		{domain.ErrNoCorrectedFields, http.StatusBadRequest, "NO_CORRECTED_FIELDS"},
		{domain.ErrInvalidExportFormat, http.StatusBadRequest, "INVALID_EXPORT_FORMAT"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrStreamUnavailable, http.StatusServiceUnavailable, "STREAM_UNAVAILABLE"},
		{classifier.NewRateLimitError("primary", errors.New("429"), 30), http.StatusTooManyRequests, "CLASSIFIER_RATE_LIMITED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}
