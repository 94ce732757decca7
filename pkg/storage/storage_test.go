package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aetas/aetas/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, maxBytes int64) *FileStore {
	t.Helper()
	store, err := NewFileStore(config.Storage{Dir: t.TempDir(), PublicURL: "http://localhost:8181/media/", MaxBytes: maxBytes})
	require.NoError(t, err)
	return store
}

func TestFileStore_Upload(t *testing.T) {
	t.Run("should store image and return public url", func(t *testing.T) {
		// given
		store := newStore(t, 1024)

		// when
		url, err := store.Upload(context.Background(), []byte("png-bytes"), "image/png")

		// then
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "http://localhost:8181/media/notes/"))
		assert.True(t, strings.HasSuffix(url, ".png"))
		name := strings.TrimPrefix(url, "http://localhost:8181/media/")
		content, err := os.ReadFile(filepath.Join(store.Dir(), filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), content)
	})

	t.Run("should generate distinct names", func(t *testing.T) {
		store := newStore(t, 0)

		first, err := store.Upload(context.Background(), []byte("a"), "image/jpeg")
		require.NoError(t, err)
		second, err := store.Upload(context.Background(), []byte("a"), "image/jpeg; charset=binary")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.True(t, strings.HasSuffix(second, ".jpg"))
	})

	t.Run("should reject non images", func(t *testing.T) {
		store := newStore(t, 0)

		_, err := store.Upload(context.Background(), []byte("%PDF"), "application/pdf")

		assert.ErrorIs(t, err, ErrUnsupportedContentType)
	})

	t.Run("should reject oversized objects", func(t *testing.T) {
		store := newStore(t, 4)

		_, err := store.Upload(context.Background(), []byte("12345"), "image/gif")

		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("should stop on cancelled context", func(t *testing.T) {
		store := newStore(t, 0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := store.Upload(ctx, []byte("a"), "image/png")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
