package module

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type eventSourceStub struct {
	events []calendar.Event
	from   time.Time
	err    error
}

func (s *eventSourceStub) Occurrences(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	s.from = from
	return s.events, s.err
}

type fixture struct {
	service *ServiceImpl
	repo    *RepositoryStub
	events  *eventSourceStub
	changes *[]event_bus.TableChanged
}

func setup(t *testing.T) fixture {
	t.Helper()
	repo := NewRepositoryStub()
	events := &eventSourceStub{}
	bus := event_bus.NewEventBus()
	changes := make([]event_bus.TableChanged, 0)
	event_bus.SubscribeTyped(bus, event_bus.TableChangedEvent, func(e event_bus.EventT[event_bus.TableChanged]) error {
		changes = append(changes, e.Data)
		return nil
	})
	service := NewService(repo, events, bus, &utils.MockClock{FixedNow: now})
	return fixture{service: service, repo: repo, events: events, changes: &changes}
}

func TestServiceImpl_CreateModule(t *testing.T) {
	t.Run("should create module with default color", func(t *testing.T) {
		// given
		f := setup(t)

		// when
		created, err := f.service.CreateModule(ctx, Module{Name: " Linear Algebra ", Code: "MA101"})

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, "Linear Algebra", created.Name)
		assert.Equal(t, DefaultColor, created.Color)
		assert.Equal(t, []event_bus.TableChanged{{Table: event_bus.TableModules, UserId: 1}}, *f.changes)
	})

	t.Run("should reject module without name", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.CreateModule(ctx, Module{Name: "  "})

		assert.ErrorIs(t, err, ErrInvalidModule)
		assert.Empty(t, *f.changes)
	})

	t.Run("should reject malformed color", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.CreateModule(ctx, Module{Name: "Physics", Color: "purple"})

		assert.ErrorIs(t, err, ErrInvalidModule)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.CreateModule(context.Background(), Module{Name: "Physics"})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_UpdateAndDeleteModule(t *testing.T) {
	t.Run("should update module", func(t *testing.T) {
		f := setup(t)
		created, err := f.service.CreateModule(ctx, Module{Name: "Physics"})
		require.NoError(t, err)

		created.Color = "#ff0000"
		updated, err := f.service.UpdateModule(ctx, created)

		require.NoError(t, err)
		assert.Equal(t, "#ff0000", updated.Color)
	})

	t.Run("should answer not found for other users module", func(t *testing.T) {
		f := setup(t)
		created, err := f.service.CreateModule(ctx, Module{Name: "Physics"})
		require.NoError(t, err)

		err = f.service.DeleteModule(user.WithUser(context.Background(), user.User{Id: 2}), created.Id)

		assert.ErrorIs(t, err, ErrModuleNotFound)
	})

	t.Run("should delete module and notify every affected table", func(t *testing.T) {
		// given
		f := setup(t)
		created, err := f.service.CreateModule(ctx, Module{Name: "Physics"})
		require.NoError(t, err)

		// when
		err = f.service.DeleteModule(ctx, created.Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{created.Id}, f.repo.Detached)
		tables := make([]event_bus.Table, 0)
		for _, c := range (*f.changes)[1:] {
			tables = append(tables, c.Table)
		}
		assert.ElementsMatch(t, []event_bus.Table{event_bus.TableModules, event_bus.TableEvents, event_bus.TableNotes}, tables)
		modules, err := f.service.ListModules(ctx)
		require.NoError(t, err)
		assert.Empty(t, modules)
	})

	t.Run("should surface storage failure", func(t *testing.T) {
		f := setup(t)
		f.repo.FailWith = errors.New("connection lost")

		err := f.service.DeleteModule(ctx, "10000000-0000-0000-0000-000000000001")

		assert.Error(t, err)
		assert.Empty(t, *f.changes)
	})
}

func TestServiceImpl_Overview(t *testing.T) {
	t.Run("should group upcoming events by module", func(t *testing.T) {
		// given
		f := setup(t)
		physics, err := f.service.CreateModule(ctx, Module{Name: "Physics", Code: "PH1"})
		require.NoError(t, err)
		chemistry, err := f.service.CreateModule(ctx, Module{Name: "Chemistry"})
		require.NoError(t, err)
		f.events.events = []calendar.Event{
			{Id: "lab", ModuleId: physics.Id, Start: now.Add(48 * time.Hour)},
			{Id: "quiz", ModuleId: physics.Id, Start: now.Add(24 * time.Hour)},
			{Id: "done", ModuleId: physics.Id, Start: now.Add(24 * time.Hour), Completed: true},
			{Id: "deleted module", ModuleId: "m1", Start: now.Add(time.Hour)},
			{Id: "loose", Start: now.Add(2 * time.Hour)},
		}

		// when
		overview, err := f.service.Overview(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, now, f.events.from)
		require.Len(t, overview.Modules, 2)
		assert.Equal(t, physics, overview.Modules[0].Module)
		assert.Equal(t, []string{"quiz", "lab"}, eventIds(overview.Modules[0].Upcoming))
		assert.Equal(t, chemistry, overview.Modules[1].Module)
		assert.Empty(t, overview.Modules[1].Upcoming)
		assert.Equal(t, []string{"deleted module", "loose"}, eventIds(overview.Others))
	})

	t.Run("should surface event source failure", func(t *testing.T) {
		f := setup(t)
		f.events.err = errors.New("boom")

		_, err := f.service.Overview(ctx)

		assert.Error(t, err)
	})
}

func eventIds(events []calendar.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.Id)
	}
	return ids
}
