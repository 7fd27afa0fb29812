package ses_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"filewise/internal/domain"
	"filewise/internal/email/ses"
)

func TestBatchReviewContent(t *testing.T) {
	batch := &domain.BulkUploadBatch{
		ID:             uuid.New(),
		Scope:          domain.BatchScopeProject,
		ClientName:     "Acme Capital",
		ProjectName:    "Fund IV",
		TotalFiles:     5,
		ProcessedFiles: 4,
		ErrorFiles:     1,
	}

	url := ses.BatchReviewURL("https://app.example.com", batch)
	assert.Equal(t, "https://app.example.com/bulk-uploads/"+batch.ID.String()+"/review", url)
	assert.Equal(t, "Your Fund IV upload is ready for review", ses.BatchReviewSubject(batch))

	text := ses.BatchReviewText(batch, url)
	assert.Contains(t, text, "4 of 5 files")
	assert.Contains(t, text, "1 files could not be processed")
	assert.Contains(t, text, url)
}

func TestBatchReviewSubject_FallsBackToScope(t *testing.T) {
	batch := &domain.BulkUploadBatch{Scope: domain.BatchScopePersonal}
	assert.Equal(t, "Your personal upload is ready for review", ses.BatchReviewSubject(batch))
	assert.NotContains(t, ses.BatchReviewText(batch, "u"), "could not be processed")
}
