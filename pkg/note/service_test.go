package note

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service *ServiceImpl
	repo    *RepositoryStub
	clock   *utils.MockClock
	changes *[]event_bus.TableChanged
}

func setup(t *testing.T) fixture {
	t.Helper()
	repo := NewRepositoryStub()
	bus := event_bus.NewEventBus()
	changes := make([]event_bus.TableChanged, 0)
	event_bus.SubscribeTyped(bus, event_bus.TableChangedEvent, func(e event_bus.EventT[event_bus.TableChanged]) error {
		changes = append(changes, e.Data)
		return nil
	})
	clock := &utils.MockClock{FixedNow: now}
	return fixture{service: NewService(repo, bus, clock), repo: repo, clock: clock, changes: &changes}
}

func TestServiceImpl_CreateNote(t *testing.T) {
	t.Run("should create untitled note", func(t *testing.T) {
		// given
		f := setup(t)

		// when
		created, err := f.service.CreateNote(ctx, Note{Title: "  "})

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, DefaultTitle, created.Title)
		assert.Equal(t, now, created.CreatedAt)
		assert.Equal(t, now, created.UpdatedAt)
		assert.Equal(t, []event_bus.TableChanged{{Table: event_bus.TableNotes, UserId: 1}}, *f.changes)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.CreateNote(context.Background(), Note{})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})

	t.Run("should not publish when storage fails", func(t *testing.T) {
		f := setup(t)
		f.repo.FailWith = errors.New("connection lost")

		_, err := f.service.CreateNote(ctx, Note{Title: "x"})

		assert.Error(t, err)
		assert.Empty(t, *f.changes)
	})
}

func TestServiceImpl_UpdateNote(t *testing.T) {
	t.Run("should bump update time and keep creation time", func(t *testing.T) {
		// given
		f := setup(t)
		created, err := f.service.CreateNote(ctx, Note{Title: "Lecture 1"})
		require.NoError(t, err)
		f.clock.SetNow(now.Add(time.Hour))

		// when
		created.Content = "# Vectors"
		created.ModuleId = "10000000-0000-0000-0000-000000000001"
		updated, err := f.service.UpdateNote(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, "# Vectors", updated.Content)
		assert.Equal(t, now, updated.CreatedAt)
		assert.Equal(t, now.Add(time.Hour), updated.UpdatedAt)
		assert.Len(t, *f.changes, 2)
	})

	t.Run("should return not found for unknown note", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.UpdateNote(ctx, Note{Id: "missing", Title: "x"})

		assert.ErrorIs(t, err, ErrNoteNotFound)
		assert.Empty(t, *f.changes)
	})
}

func TestServiceImpl_ListAndDelete(t *testing.T) {
	// given
	f := setup(t)
	first, err := f.service.CreateNote(ctx, Note{Title: "First"})
	require.NoError(t, err)
	f.clock.SetNow(now.Add(time.Minute))
	second, err := f.service.CreateNote(ctx, Note{Title: "Second"})
	require.NoError(t, err)
	_, err = f.service.CreateNote(user.WithUser(context.Background(), user.User{Id: 2}), Note{Title: "Foreign"})
	require.NoError(t, err)

	t.Run("should list own notes newest first", func(t *testing.T) {
		notes, err := f.service.ListNotes(ctx)

		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, second.Id, notes[0].Id)
		assert.Equal(t, first.Id, notes[1].Id)
	})

	t.Run("should delete note", func(t *testing.T) {
		err := f.service.DeleteNote(ctx, first.Id)

		require.NoError(t, err)
		_, err = f.service.GetNote(ctx, first.Id)
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})
}
