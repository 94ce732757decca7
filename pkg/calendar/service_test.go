package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Settings: user.Settings{WeekFirstDay: time.Monday}})

type serviceFixture struct {
	service *ServiceImpl
	repo    *RepositoryStub
	clock   *utils.MockClock
	changes *[]event_bus.TableChanged
}

func setupService(t *testing.T) serviceFixture {
	t.Helper()
	repo := NewRepositoryStub()
	bus := event_bus.NewEventBus()
	changes := make([]event_bus.TableChanged, 0)
	event_bus.SubscribeTyped(bus, event_bus.TableChangedEvent, func(e event_bus.EventT[event_bus.TableChanged]) error {
		changes = append(changes, e.Data)
		return nil
	})
	clock := &utils.MockClock{FixedNow: date(2024, 6, 12, 12, 0)}
	service := NewService(repo, bus, clock, config.Calendar{HorizonMonths: 3})
	return serviceFixture{service: service, repo: repo, clock: clock, changes: &changes}
}

func TestService_CreateEvent(t *testing.T) {
	t.Run("should store event with defaults and publish change", func(t *testing.T) {
		// given
		f := setupService(t)
		berlin := time.FixedZone("CEST", 2*60*60)

		// when
		created, err := f.service.CreateEvent(ctx, Event{
			Title: "Study group",
			Start: time.Date(2024, 6, 13, 18, 0, 0, 0, berlin),
			End:   time.Date(2024, 6, 13, 19, 0, 0, 0, berlin),
		})

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, date(2024, 6, 13, 18, 0), created.Start)
		assert.Equal(t, CategoryOther, created.Category)
		assert.Equal(t, PriorityMedium, created.Priority)
		assert.Equal(t, []event_bus.TableChanged{{Table: event_bus.TableEvents, UserId: 1}}, *f.changes)
	})

	t.Run("should reject invalid event", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.CreateEvent(ctx, Event{Title: "", Start: date(2024, 6, 13, 18, 0), End: date(2024, 6, 13, 19, 0)})

		assert.ErrorIs(t, err, ErrInvalidEvent)
		assert.Empty(t, *f.changes)
	})

	t.Run("should reject end before start", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.CreateEvent(ctx, Event{Title: "x", Start: date(2024, 6, 13, 18, 0), End: date(2024, 6, 13, 17, 0)})

		assert.ErrorIs(t, err, ErrInvalidEvent)
	})

	t.Run("should coerce zero interval", func(t *testing.T) {
		f := setupService(t)

		created, err := f.service.CreateEvent(ctx, Event{
			Title:      "Daily",
			Start:      date(2024, 6, 13, 8, 0),
			End:        date(2024, 6, 13, 9, 0),
			Recurrence: &RecurrenceRule{Frequency: Daily},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, created.Recurrence.Interval)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.CreateEvent(context.Background(), Event{Title: "x"})

		assert.ErrorIs(t, err, user.ErrNoUser)
		assert.Contains(t, err.Error(), "failed to get current user")
	})

	t.Run("should not publish when storage fails", func(t *testing.T) {
		f := setupService(t)
		f.repo.FailWith = errors.New("connection lost")

		_, err := f.service.CreateEvent(ctx, Event{Title: "x", Start: date(2024, 6, 13, 18, 0), End: date(2024, 6, 13, 19, 0)})

		assert.Error(t, err)
		assert.Empty(t, *f.changes)
	})
}

func TestService_OccurrenceIdsAreRejected(t *testing.T) {
	f := setupService(t)
	id := OccurrenceId("00000000-0000-0000-0000-000000000001", 3)

	_, err := f.service.UpdateEvent(ctx, Event{Id: id, Title: "x", Start: date(2024, 6, 13, 18, 0), End: date(2024, 6, 13, 19, 0)})
	assert.ErrorIs(t, err, ErrRecurringInstance)

	_, err = f.service.SetCompleted(ctx, id, true)
	assert.ErrorIs(t, err, ErrRecurringInstance)

	err = f.service.DeleteEvent(ctx, id)
	assert.ErrorIs(t, err, ErrRecurringInstance)

	_, err = f.service.GetEvent(ctx, id)
	assert.ErrorIs(t, err, ErrRecurringInstance)
}

func TestService_UpdateAndDelete(t *testing.T) {
	t.Run("should update, complete and delete stored event", func(t *testing.T) {
		// given
		f := setupService(t)
		created, err := f.service.CreateEvent(ctx, Event{Title: "Draft", Start: date(2024, 6, 13, 18, 0), End: date(2024, 6, 13, 19, 0)})
		require.NoError(t, err)

		// when
		created.Title = "Final"
		updated, err := f.service.UpdateEvent(ctx, created)
		require.NoError(t, err)
		completed, err := f.service.SetCompleted(ctx, created.Id, true)
		require.NoError(t, err)
		err = f.service.DeleteEvent(ctx, created.Id)
		require.NoError(t, err)

		// then
		assert.Equal(t, "Final", updated.Title)
		assert.True(t, completed.Completed)
		_, err = f.service.GetEvent(ctx, created.Id)
		assert.ErrorIs(t, err, ErrEventNotFound)
		assert.Len(t, *f.changes, 4)
	})

	t.Run("should not touch other users events", func(t *testing.T) {
		f := setupService(t)
		created, err := f.service.CreateEvent(ctx, Event{Title: "Mine", Start: date(2024, 6, 13, 18, 0), End: date(2024, 6, 13, 19, 0)})
		require.NoError(t, err)
		other := user.WithUser(context.Background(), user.User{Id: 2})

		err = f.service.DeleteEvent(other, created.Id)

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestService_Occurrences(t *testing.T) {
	t.Run("should expand templates until the horizon", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.service.CreateEvent(ctx, Event{
			Title:      "Weekly review",
			Start:      date(2024, 6, 3, 17, 0),
			End:        date(2024, 6, 3, 18, 0),
			Recurrence: &RecurrenceRule{Frequency: Weekly, Interval: 1},
		})
		require.NoError(t, err)

		// when
		occurrences, err := f.service.Occurrences(ctx, date(2024, 6, 1, 0, 0), time.Time{})

		// then
		require.NoError(t, err)
		require.NotEmpty(t, occurrences)
		assert.Equal(t, date(2024, 6, 3, 17, 0), occurrences[0].Start)
		last := occurrences[len(occurrences)-1]
		assert.False(t, last.Start.After(date(2024, 9, 1, 0, 0)))
		assert.Equal(t, date(2024, 8, 26, 17, 0), last.Start)
	})

	t.Run("should reject inverted window", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Occurrences(ctx, date(2024, 6, 10, 0, 0), date(2024, 6, 1, 0, 0))

		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestService_Views(t *testing.T) {
	f := setupService(t)
	_, err := f.service.CreateEvent(ctx, Event{
		Title:      "Standup",
		Start:      date(2024, 6, 10, 9, 0),
		End:        date(2024, 6, 10, 9, 15),
		Recurrence: &RecurrenceRule{Frequency: Daily, Interval: 1},
	})
	require.NoError(t, err)
	_, err = f.service.CreateEvent(ctx, Event{Title: "Exam", Start: date(2024, 6, 12, 9, 0), End: date(2024, 6, 12, 11, 0)})
	require.NoError(t, err)

	t.Run("day view", func(t *testing.T) {
		view, err := f.service.DayView(ctx, date(2024, 6, 12, 15, 0))

		require.NoError(t, err)
		require.Len(t, view.Slots[9].Events, 2)
		assert.Equal(t, 2, view.Slots[9].Events[0].TotalColumns)
	})

	t.Run("week view starts on the users first day", func(t *testing.T) {
		view, err := f.service.WeekView(ctx, date(2024, 6, 12, 15, 0))

		require.NoError(t, err)
		assert.Equal(t, date(2024, 6, 10, 0, 0), view.Start)
		assert.Len(t, view.Days[0].Events, 1)
		assert.Len(t, view.Days[2].Events, 2)
	})

	t.Run("month view", func(t *testing.T) {
		view, err := f.service.MonthView(ctx, date(2024, 6, 12, 15, 0))

		require.NoError(t, err)
		assert.Equal(t, time.June, view.Month)
		assert.Equal(t, date(2024, 5, 27, 0, 0), view.Weeks[0][0].Date)
		assert.Empty(t, view.Weeks[0][0].Events)
	})

	t.Run("list view", func(t *testing.T) {
		buckets, err := f.service.ListView(ctx)

		require.NoError(t, err)
		assert.Len(t, buckets.Today, 2)
		assert.Len(t, buckets.Tomorrow, 1)
		assert.Len(t, buckets.ThisWeek, 6)
		assert.NotEmpty(t, buckets.Later)
	})
}

func TestService_ICS(t *testing.T) {
	// given
	f := setupService(t)
	_, err := f.service.CreateEvent(ctx, Event{Title: "Exam", Start: date(2024, 6, 12, 9, 0), End: date(2024, 6, 12, 11, 0), Category: CategorySchool})
	require.NoError(t, err)

	// when
	feed, err := f.service.ExportICS(ctx)
	require.NoError(t, err)
	other := user.WithUser(context.Background(), user.User{Id: 2})
	result, err := f.service.ImportICS(other, strings.NewReader(feed))

	// then
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Exam", result.Events[0].Title)
	assert.Equal(t, CategorySchool, result.Events[0].Category)
	stored, err := f.service.ListEvents(other)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, event_bus.TableChanged{Table: event_bus.TableEvents, UserId: 2}, (*f.changes)[len(*f.changes)-1])
}
