package app

import (
	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/assistant"
	"github.com/aetas/aetas/pkg/auth"
	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/live"
	"github.com/aetas/aetas/pkg/module"
	"github.com/aetas/aetas/pkg/note"
	"github.com/aetas/aetas/pkg/storage"
	"github.com/aetas/aetas/pkg/user"
	"github.com/aetas/aetas/pkg/workspace"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	AuthService auth.Service
	AuthHandler *auth.Handler

	CalendarService *calendar.ServiceImpl
	CalendarHandler *calendar.Handler

	ModuleService *module.ServiceImpl
	ModuleHandler *module.Handler

	Storage     *storage.FileStore
	NoteService *note.ServiceImpl
	NoteHandler *note.Handler

	AssistantService *assistant.ServiceImpl
	AssistantHandler *assistant.Handler

	LiveHub     *live.Hub
	LiveHandler *live.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.AuthService = auth.NewService(auth.NewRepository(db), deps.UserService, deps.Clock, cfg.Session.TTL)
	deps.AuthHandler = auth.NewHandler(deps.AuthService, auth.NewGoogleProvider(cfg), cfg)

	deps.CalendarService = calendar.NewService(calendar.NewRepository(db), deps.EventBus, deps.Clock, cfg.Calendar)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.ModuleService = module.NewService(module.NewRepository(db), deps.CalendarService, deps.EventBus, deps.Clock)
	deps.ModuleHandler = module.NewHandler(deps.ModuleService)

	fileStore, err := storage.NewFileStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	deps.Storage = fileStore
	deps.NoteService = note.NewService(note.NewRepository(db), deps.EventBus, deps.Clock)
	deps.NoteHandler = note.NewHandler(deps.NoteService, deps.Storage)

	deps.AssistantService = assistant.NewService(assistant.NewChatClient(cfg.AI), deps.NoteService, deps.ModuleService)
	deps.AssistantHandler = assistant.NewHandler(deps.AssistantService)

	store := workspace.ServiceStore{
		Events:  deps.CalendarService,
		Modules: deps.ModuleService,
		Notes:   deps.NoteService,
	}
	builder := live.ViewBuilder{
		Expander: calendar.Expander{
			MaxOccurrences:          cfg.Calendar.MaxOccurrences,
			CountWeekdayOccurrences: cfg.Calendar.CountWeekdayOccurrences,
			CountFromSeriesStart:    cfg.Calendar.CountFromSeriesStart,
		},
		Clock:         deps.Clock,
		HorizonMonths: cfg.Calendar.HorizonMonths,
	}
	deps.LiveHub = live.NewHub(store, deps.UserService, builder)
	deps.LiveHub.Attach(deps.EventBus)
	deps.LiveHandler = live.NewHandler(deps.LiveHub)

	return deps, nil
}
