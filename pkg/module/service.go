package module

import (
	"context"
	"fmt"
	"time"

	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListModules(ctx context.Context) ([]Module, error)
	GetModule(ctx context.Context, moduleId string) (Module, error)
	CreateModule(ctx context.Context, module Module) (Module, error)
	UpdateModule(ctx context.Context, module Module) (Module, error)
	DeleteModule(ctx context.Context, moduleId string) error
	Overview(ctx context.Context) (Overview, error)
}

// EventSource yields expanded events for a window. calendar.Service satisfies it.
type EventSource interface {
	Occurrences(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
}

// ModuleTasks lists the upcoming incomplete events of one module.
type ModuleTasks struct {
	Module   Module
	Upcoming []calendar.Event
}

// Overview is the per-module upcoming-tasks panel. Others holds the upcoming events without a
// module, or whose module no longer exists.
type Overview struct {
	Modules []ModuleTasks
	Others  []calendar.Event
}

type ServiceImpl struct {
	repo   Repository
	events EventSource
	bus    *event_bus.EventBus
	clock  utils.Clock
}

func NewService(repo Repository, events EventSource, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, events: events, bus: bus, clock: clock}
}

func (s *ServiceImpl) ListModules(ctx context.Context) ([]Module, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetModules(ctx, userId)
}

func (s *ServiceImpl) GetModule(ctx context.Context, moduleId string) (Module, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Module{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetModule(ctx, userId, moduleId)
}

func (s *ServiceImpl) CreateModule(ctx context.Context, module Module) (Module, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Module{}, fmt.Errorf("failed to get current user: %w", err)
	}
	module = module.WithDefaults()
	if err := module.Validate(); err != nil {
		return Module{}, err
	}

	stored, err := s.repo.StoreModule(ctx, userId, module)
	if err != nil {
		return Module{}, fmt.Errorf("failed to store module: %w", err)
	}
	s.changed(ctx, userId, event_bus.TableModules)
	return stored, nil
}

func (s *ServiceImpl) UpdateModule(ctx context.Context, module Module) (Module, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Module{}, fmt.Errorf("failed to get current user: %w", err)
	}
	module = module.WithDefaults()
	if err := module.Validate(); err != nil {
		return Module{}, err
	}

	updated, err := s.repo.UpdateModule(ctx, userId, module)
	if err != nil {
		return Module{}, fmt.Errorf("failed to update module: %w", err)
	}
	s.changed(ctx, userId, event_bus.TableModules)
	return updated, nil
}

// DeleteModule also detaches the module's events and notes, so subscribers of both tables are
// notified.
func (s *ServiceImpl) DeleteModule(ctx context.Context, moduleId string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.repo.DeleteModule(ctx, userId, moduleId); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	s.changed(ctx, userId, event_bus.TableModules)
	s.changed(ctx, userId, event_bus.TableEvents)
	s.changed(ctx, userId, event_bus.TableNotes)
	return nil
}

func (s *ServiceImpl) Overview(ctx context.Context) (Overview, error) {
	modules, err := s.ListModules(ctx)
	if err != nil {
		return Overview{}, err
	}
	now := utils.WallClock(s.clock.Now())
	events, err := s.events.Occurrences(ctx, now, time.Time{})
	if err != nil {
		return Overview{}, fmt.Errorf("failed to get events: %w", err)
	}
	return BuildOverview(modules, events, now), nil
}

// BuildOverview groups the incomplete events starting after now by module, keeping the order of
// modules.
func BuildOverview(modules []Module, events []calendar.Event, now time.Time) Overview {
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.Id)
	}
	groups := calendar.UpcomingByModule(events, ids, now)

	overview := Overview{Modules: make([]ModuleTasks, 0, len(modules)), Others: groups[calendar.NoModule]}
	if overview.Others == nil {
		overview.Others = []calendar.Event{}
	}
	for _, m := range modules {
		upcoming := groups[m.Id]
		if upcoming == nil {
			upcoming = []calendar.Event{}
		}
		overview.Modules = append(overview.Modules, ModuleTasks{Module: m, Upcoming: upcoming})
	}
	return overview
}

func (s *ServiceImpl) changed(ctx context.Context, userId int, table event_bus.Table) {
	if err := s.bus.PublishTableChanged(ctx, table, userId); err != nil {
		log.Errorf("failed to publish %s change for user %d: %v", table, userId, err)
	}
}
