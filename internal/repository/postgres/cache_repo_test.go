package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRepo_InvalidateByHash_CountsEveryEntry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCacheRepo(db)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// No is_valid filter: entries invalidated earlier still get their
	// correction count bumped.
	mock.ExpectExec(`UPDATE classification_cache SET .*correction_count = correction_count \+ 1.* WHERE content_hash = \$2$`).
		WithArgs(at, "0000abcd").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.InvalidateByHash(context.Background(), "0000abcd", at)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
