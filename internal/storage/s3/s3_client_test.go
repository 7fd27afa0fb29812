package s3_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filewise/internal/config"
	"filewise/internal/port"
	s3storage "filewise/internal/storage/s3"
)

func newTestStorage(t *testing.T, handler http.HandlerFunc) port.ObjectStorage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	storage, err := s3storage.NewS3Client(&config.S3Config{
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return storage
}

func TestS3Client_Exists(t *testing.T) {
	storage := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artifacts/present.jsonl":
			w.Header().Set("ETag", `"abc"`)
			w.WriteHeader(http.StatusOK)
		case "/artifacts/missing.jsonl":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	})

	ok, err := storage.Exists(context.Background(), "artifacts", "present.jsonl")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = storage.Exists(context.Background(), "artifacts", "missing.jsonl")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = storage.Exists(context.Background(), "artifacts", "secret.jsonl")
	assert.Error(t, err)
}

func TestS3Client_Download(t *testing.T) {
	storage := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/uploads/batches/b/items/i/memo.pdf", r.URL.Path)
		_, _ = w.Write([]byte("%PDF-1.7"))
	})

	data, err := storage.Download(context.Background(), "uploads", "batches/b/items/i/memo.pdf")

	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestS3Client_PresignedURL(t *testing.T) {
	storage := newTestStorage(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	url, err := storage.GetPresignedURL(context.Background(), "artifacts", "training-exports/x.jsonl", 900)

	require.NoError(t, err)
	assert.True(t, strings.Contains(url, "/artifacts/training-exports/x.jsonl"), url)
	assert.Contains(t, url, "X-Amz-Expires=900")
}
