package workspace

import (
	"context"

	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/module"
	"github.com/aetas/aetas/pkg/note"
)

// Store is the data store a workspace reads from and writes through to. Calls act on behalf of
// the user carried by the context.
type Store interface {
	ListEvents(ctx context.Context) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, event calendar.Event) (calendar.Event, error)
	UpdateEvent(ctx context.Context, event calendar.Event) (calendar.Event, error)
	SetCompleted(ctx context.Context, eventId string, completed bool) (calendar.Event, error)
	DeleteEvent(ctx context.Context, eventId string) error

	ListModules(ctx context.Context) ([]module.Module, error)
	CreateModule(ctx context.Context, module module.Module) (module.Module, error)
	UpdateModule(ctx context.Context, module module.Module) (module.Module, error)
	DeleteModule(ctx context.Context, moduleId string) error

	ListNotes(ctx context.Context) ([]note.Note, error)
	CreateNote(ctx context.Context, note note.Note) (note.Note, error)
	UpdateNote(ctx context.Context, note note.Note) (note.Note, error)
	DeleteNote(ctx context.Context, noteId string) error
}

// ServiceStore backs a workspace with the feature services.
type ServiceStore struct {
	Events  calendar.Service
	Modules module.Service
	Notes   note.Service
}

func (s ServiceStore) ListEvents(ctx context.Context) ([]calendar.Event, error) {
	return s.Events.ListEvents(ctx)
}

func (s ServiceStore) CreateEvent(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	return s.Events.CreateEvent(ctx, event)
}

func (s ServiceStore) UpdateEvent(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	return s.Events.UpdateEvent(ctx, event)
}

func (s ServiceStore) SetCompleted(ctx context.Context, eventId string, completed bool) (calendar.Event, error) {
	return s.Events.SetCompleted(ctx, eventId, completed)
}

func (s ServiceStore) DeleteEvent(ctx context.Context, eventId string) error {
	return s.Events.DeleteEvent(ctx, eventId)
}

func (s ServiceStore) ListModules(ctx context.Context) ([]module.Module, error) {
	return s.Modules.ListModules(ctx)
}

func (s ServiceStore) CreateModule(ctx context.Context, m module.Module) (module.Module, error) {
	return s.Modules.CreateModule(ctx, m)
}

func (s ServiceStore) UpdateModule(ctx context.Context, m module.Module) (module.Module, error) {
	return s.Modules.UpdateModule(ctx, m)
}

func (s ServiceStore) DeleteModule(ctx context.Context, moduleId string) error {
	return s.Modules.DeleteModule(ctx, moduleId)
}

func (s ServiceStore) ListNotes(ctx context.Context) ([]note.Note, error) {
	return s.Notes.ListNotes(ctx)
}

func (s ServiceStore) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	return s.Notes.CreateNote(ctx, n)
}

func (s ServiceStore) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	return s.Notes.UpdateNote(ctx, n)
}

func (s ServiceStore) DeleteNote(ctx context.Context, noteId string) error {
	return s.Notes.DeleteNote(ctx, noteId)
}
