package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filewise/internal/domain"
)

func filedDocument(itemID uuid.UUID) *domain.Document {
	return &domain.Document{
		ID:               uuid.New(),
		DocumentCode:     "ACME-IR-EXT-JD-V1.0-2026-03-01",
		BasePattern:      "ACME-IR-EXT",
		Version:          "V1.0",
		OriginalFileName: "q3.pdf",
		SourceItemID:     &itemID,
		CreatedAt:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDocumentRepo_CreateForItem_ClaimsItemThenInserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepo(db)
	itemID := uuid.New()
	doc := filedDocument(itemID)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bulk_upload_items SET status = \$1, filed_document_id = \$2`).
		WithArgs(domain.ItemStatusFiled, doc.ID, itemID, domain.ItemStatusReadyForReview).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO documents`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateForItem(context.Background(), doc, itemID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_CreateForItem_ItemAlreadyFiled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepo(db)
	itemID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bulk_upload_items`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CreateForItem(context.Background(), filedDocument(itemID), itemID)

	assert.ErrorIs(t, err, domain.ErrItemNotReady)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_CreateForItem_InsertFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepo(db)
	itemID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bulk_upload_items`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO documents`).WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	err := repo.CreateForItem(context.Background(), filedDocument(itemID), itemID)

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
