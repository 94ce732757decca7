package note

import (
	"context"
	"testing"
	"time"

	"github.com/aetas/aetas/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryImpl(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	ctx := context.Background()
	pool := test_utils.SharedDB(t)
	repo := NewRepository(pool)
	userId, err := test_utils.CreateTestUser(ctx, pool, "note-user")
	require.NoError(t, err)
	created := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("should store, update and read note", func(t *testing.T) {
		// given
		stored, err := repo.StoreNote(ctx, userId, Note{Title: "Vectors", Content: "a + b", CreatedAt: created, UpdatedAt: created})
		require.NoError(t, err)

		// when
		stored.Content = "a + b = c"
		stored.UpdatedAt = created.Add(time.Hour)
		_, err = repo.UpdateNote(ctx, userId, stored)
		require.NoError(t, err)
		read, err := repo.GetNote(ctx, userId, stored.Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, "a + b = c", read.Content)
		assert.Equal(t, NoModule, read.ModuleId)
		assert.True(t, created.Equal(read.CreatedAt))
		assert.True(t, created.Add(time.Hour).Equal(read.UpdatedAt))
	})

	t.Run("should list newest first", func(t *testing.T) {
		newer, err := repo.StoreNote(ctx, userId, Note{Title: "Newer", CreatedAt: created, UpdatedAt: created.Add(48 * time.Hour)})
		require.NoError(t, err)

		notes, err := repo.GetNotes(ctx, userId)

		require.NoError(t, err)
		require.NotEmpty(t, notes)
		assert.Equal(t, newer.Id, notes[0].Id)
	})

	t.Run("should not find notes of other users", func(t *testing.T) {
		stored, err := repo.StoreNote(ctx, userId, Note{Title: "Private", CreatedAt: created, UpdatedAt: created})
		require.NoError(t, err)
		otherId, err := test_utils.CreateTestUser(ctx, pool, "other-note-user")
		require.NoError(t, err)

		_, err = repo.GetNote(ctx, otherId, stored.Id)
		assert.ErrorIs(t, err, ErrNoteNotFound)
		err = repo.DeleteNote(ctx, otherId, stored.Id)
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})

	t.Run("should treat malformed ids as not found", func(t *testing.T) {
		_, err := repo.GetNote(ctx, userId, "not-a-uuid")

		assert.ErrorIs(t, err, ErrNoteNotFound)
	})
}
