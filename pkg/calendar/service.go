package calendar

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, eventId string) (Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	SetCompleted(ctx context.Context, eventId string, completed bool) (Event, error)
	DeleteEvent(ctx context.Context, eventId string) error
	Occurrences(ctx context.Context, from, to time.Time) ([]Event, error)
	DayView(ctx context.Context, date time.Time) (DayView, error)
	WeekView(ctx context.Context, date time.Time) (WeekView, error)
	MonthView(ctx context.Context, date time.Time) (MonthView, error)
	ListView(ctx context.Context) (Buckets, error)
	ExportICS(ctx context.Context) (string, error)
	ImportICS(ctx context.Context, r io.Reader) (ImportResult, error)
}

type ServiceImpl struct {
	repo     Repository
	bus      *event_bus.EventBus
	expander Expander
	clock    utils.Clock
	cfg      config.Calendar
}

func NewService(repo Repository, bus *event_bus.EventBus, clock utils.Clock, cfg config.Calendar) *ServiceImpl {
	return &ServiceImpl{
		repo: repo,
		bus:  bus,
		expander: Expander{
			MaxOccurrences:          cfg.MaxOccurrences,
			CountWeekdayOccurrences: cfg.CountWeekdayOccurrences,
			CountFromSeriesStart:    cfg.CountFromSeriesStart,
		},
		clock: clock,
		cfg:   cfg,
	}
}

func (s *ServiceImpl) ListEvents(ctx context.Context) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetEvents(ctx, userId)
}

func (s *ServiceImpl) GetEvent(ctx context.Context, eventId string) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, _, ok := ParseOccurrenceId(eventId); ok {
		return Event{}, ErrRecurringInstance
	}
	return s.repo.GetEvent(ctx, userId, eventId)
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}

	event = Normalize(event)
	if err := event.Validate(); err != nil {
		return Event{}, err
	}

	stored, err := s.repo.StoreEvent(ctx, userId, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	s.changed(ctx, userId)
	return stored, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, _, ok := ParseOccurrenceId(event.Id); ok {
		return Event{}, ErrRecurringInstance
	}

	event = Normalize(event)
	if err := event.Validate(); err != nil {
		return Event{}, err
	}

	updated, err := s.repo.UpdateEvent(ctx, userId, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	s.changed(ctx, userId)
	return updated, nil
}

// SetCompleted toggles the stored flag. Completion of a generated occurrence is client state
// and is rejected with ErrRecurringInstance.
func (s *ServiceImpl) SetCompleted(ctx context.Context, eventId string, completed bool) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, _, ok := ParseOccurrenceId(eventId); ok {
		return Event{}, ErrRecurringInstance
	}

	updated, err := s.repo.SetCompleted(ctx, userId, eventId, completed)
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	s.changed(ctx, userId)
	return updated, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, eventId string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if _, _, ok := ParseOccurrenceId(eventId); ok {
		return ErrRecurringInstance
	}

	if err := s.repo.DeleteEvent(ctx, userId, eventId); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.changed(ctx, userId)
	return nil
}

// Occurrences returns singletons and expanded occurrences starting within [from, to]. A zero to
// means the configured horizon past from.
func (s *ServiceImpl) Occurrences(ctx context.Context, from, to time.Time) ([]Event, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	from = utils.WallClock(from)
	if to.IsZero() {
		to = from.AddDate(0, s.horizonMonths(), 0)
	}
	to = utils.WallClock(to)
	return s.expander.ExpandAll(events, from, to)
}

func (s *ServiceImpl) DayView(ctx context.Context, date time.Time) (DayView, error) {
	day := utils.StartOfDay(utils.WallClock(date))
	events, err := s.Occurrences(ctx, day, day.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return DayView{}, err
	}
	return BuildDayView(events, day), nil
}

func (s *ServiceImpl) WeekView(ctx context.Context, date time.Time) (WeekView, error) {
	start := utils.StartOfWeek(utils.WallClock(date), s.weekFirstDay(ctx))
	events, err := s.Occurrences(ctx, start, start.AddDate(0, 0, 7).Add(-time.Nanosecond))
	if err != nil {
		return WeekView{}, err
	}
	return BuildWeekView(events, start, s.weekFirstDay(ctx)), nil
}

func (s *ServiceImpl) MonthView(ctx context.Context, date time.Time) (MonthView, error) {
	date = utils.WallClock(date)
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	gridStart := utils.StartOfWeek(first, s.weekFirstDay(ctx))
	gridEnd := gridStart.AddDate(0, 0, 7*6)
	events, err := s.Occurrences(ctx, gridStart, gridEnd)
	if err != nil {
		return MonthView{}, err
	}
	return BuildMonthView(events, date, s.weekFirstDay(ctx)), nil
}

// ListView buckets everything from the start of the current week up to the horizon.
func (s *ServiceImpl) ListView(ctx context.Context) (Buckets, error) {
	now := utils.WallClock(s.clock.Now())
	weekStart := utils.StartOfWeek(now, s.weekFirstDay(ctx))
	events, err := s.Occurrences(ctx, weekStart, now.AddDate(0, s.horizonMonths(), 0))
	if err != nil {
		return Buckets{}, err
	}
	return BuildListView(events, now, s.weekFirstDay(ctx)), nil
}

func (s *ServiceImpl) ExportICS(ctx context.Context) (string, error) {
	events, err := s.ListEvents(ctx)
	if err != nil {
		return "", err
	}
	return ExportICS(events, s.clock.Now()), nil
}

// ImportICS stores every importable event of the document. Events that fail validation are
// counted as skipped.
func (s *ServiceImpl) ImportICS(ctx context.Context, r io.Reader) (ImportResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to get current user: %w", err)
	}

	parsed, err := ParseICS(r)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Events: make([]Event, 0, len(parsed.Events)), Skipped: parsed.Skipped}
	for _, e := range parsed.Events {
		if err := e.Validate(); err != nil {
			log.Debugf("skipping imported event %q: %v", e.Title, err)
			result.Skipped++
			continue
		}
		stored, err := s.repo.StoreEvent(ctx, userId, e)
		if err != nil {
			return result, fmt.Errorf("failed to store imported event: %w", err)
		}
		result.Events = append(result.Events, stored)
	}
	if len(result.Events) > 0 {
		s.changed(ctx, userId)
	}
	return result, nil
}

func (s *ServiceImpl) changed(ctx context.Context, userId int) {
	if err := s.bus.PublishTableChanged(ctx, event_bus.TableEvents, userId); err != nil {
		log.Errorf("failed to publish events change for user %d: %v", userId, err)
	}
}

func (s *ServiceImpl) horizonMonths() int {
	if s.cfg.HorizonMonths <= 0 {
		return 3
	}
	return s.cfg.HorizonMonths
}

func (s *ServiceImpl) weekFirstDay(ctx context.Context) time.Weekday {
	if current, err := user.CurrentUser(ctx); err == nil {
		return current.Settings.WeekFirstDay
	}
	return time.Weekday(s.cfg.WeekFirstDay)
}

// Normalize applies the defaults and moves every time of e to the wall-clock frame.
func Normalize(e Event) Event {
	e = e.WithDefaults()
	e.Start = utils.WallClock(e.Start)
	e.End = utils.WallClock(e.End)
	e.IsRecurringInstance = false
	e.TemplateId = ""
	if e.Recurrence != nil {
		rule := *e.Recurrence
		rule.Interval = max(rule.Interval, 1)
		if rule.EndDate != nil {
			end := utils.WallClock(*rule.EndDate)
			rule.EndDate = &end
		}
		e.Recurrence = &rule
	}
	return e
}
