package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("upload then fetch round-trips", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		require.NoError(t, store.Upload(ctx, "photos/a.jpg", []byte("jpeg-bytes"), "image/jpeg"))

		data, contentType, err := store.Fetch(ctx, "photos/a.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
		assert.Equal(t, "image/jpeg", contentType)
	})

	t.Run("fetch missing object fails", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		_, _, err := store.Fetch(ctx, "missing")
		assert.Error(t, err)
	})

	t.Run("exists and delete", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		require.NoError(t, store.Upload(ctx, "k", []byte("v"), "text/plain"))

		ok, err := store.ObjectExists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, store.DeleteObject(ctx, "k"))
		ok, err = store.ObjectExists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("presign requires stored object", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		_, _, err := store.PresignDownload(ctx, "missing", time.Minute)
		assert.Error(t, err)

		require.NoError(t, store.Upload(ctx, "exports/x.csv", []byte("a,b"), "text/csv"))
		url, expiresAt, err := store.PresignDownload(ctx, "exports/x.csv", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "exports/x.csv")
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("fetched bytes are a copy", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		require.NoError(t, store.Upload(ctx, "k", []byte("abc"), "text/plain"))

		data, _, err := store.Fetch(ctx, "k")
		require.NoError(t, err)
		data[0] = 'z'

		again, _, err := store.Fetch(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		assert.Error(t, store.Upload(ctx, "", nil, ""))
		_, _, err := store.Fetch(ctx, "")
		assert.Error(t, err)
	})
}
