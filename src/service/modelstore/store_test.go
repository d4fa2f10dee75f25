package modelstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smell-bot/src/config"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Put(ctx, "smell-model", []byte(`{"a":1}`)))
	require.NoError(t, store.Put(ctx, "other", []byte(`{}`)))
	require.NoError(t, store.Put(ctx, "smell-model", []byte(`{"a":2}`)))

	data, err := store.Get(ctx, "smell-model")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(data))

	handles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "smell-model"}, handles)
}

func TestHandleValidation(t *testing.T) {
	ctx := context.Background()
	for _, s := range []Store{NewMemoryStore(), mustFileStore(t)} {
		assert.Error(t, s.Put(ctx, "", nil))
		assert.Error(t, s.Put(ctx, "../escape", nil))
		assert.Error(t, s.Put(ctx, "..", nil))
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	blob := []byte("abc")
	require.NoError(t, store.Put(ctx, "m", blob))
	blob[0] = 'z'

	data, err := store.Get(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestNewRejectsIncompleteS3Config(t *testing.T) {
	_, err := New(config.ModelStoreConfig{Backend: "s3", S3: config.S3Config{Endpoint: "localhost:9000"}})
	assert.Error(t, err)

	_, err = New(config.ModelStoreConfig{Backend: "tape"})
	assert.Error(t, err)
}

func mustFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestS3StoreRetriesBucketCheckAfterFailure(t *testing.T) {
	var checks atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusNotImplemented)
			return
		}
		if checks.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3Store(config.S3Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "models",
	})
	require.NoError(t, err)

	require.Error(t, store.ensureBucket(t.Context()))
	require.NoError(t, store.ensureBucket(t.Context()))
	require.NoError(t, store.ensureBucket(t.Context()))
	assert.Equal(t, int32(2), checks.Load())
}
