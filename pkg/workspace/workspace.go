package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/module"
	"github.com/aetas/aetas/pkg/note"
	log "github.com/sirupsen/logrus"
)

var ErrNotLoaded = errors.New("workspace not loaded")

const tentativePrefix = "pending-"

// Listener receives a copy of the state after every local change, tentative ones included.
type Listener func(State)

// Workspace owns the in-memory collections of one user. Every mutation is applied locally
// first, then sent to the store, then either reconciled with the stored entity or rolled back
// to the state before the mutation. Mutations run one at a time.
type Workspace struct {
	store    Store
	listener Listener

	ops       sync.Mutex
	mu        sync.RWMutex
	state     State
	loaded    bool
	tentative int
}

func New(store Store, listener Listener) *Workspace {
	return &Workspace{
		store:    store,
		listener: listener,
		state:    State{Completed: make(map[string]bool)},
	}
}

// Load replaces the collections with what the store holds. Completion overrides survive.
func (w *Workspace) Load(ctx context.Context) error {
	w.ops.Lock()
	defer w.ops.Unlock()

	events, err := w.store.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	modules, err := w.store.ListModules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load modules: %w", err)
	}
	notes, err := w.store.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}

	w.mu.Lock()
	w.state.Events = events
	w.state.Modules = modules
	w.state.Notes = notes
	w.loaded = true
	current := w.state.clone()
	w.mu.Unlock()

	w.notify(current)
	return nil
}

func (w *Workspace) Loaded() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loaded
}

func (w *Workspace) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.clone()
}

func (w *Workspace) CreateEvent(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	event = event.WithDefaults()
	if err := event.Validate(); err != nil {
		return calendar.Event{}, err
	}
	var placeholder string
	return mutate(ctx, w,
		func(s *State) error {
			placeholder = w.nextTentativeId()
			tentative := cloneEvent(event)
			tentative.Id = placeholder
			s.Events = append(s.Events, tentative)
			return nil
		},
		func(ctx context.Context) (calendar.Event, error) {
			return w.store.CreateEvent(ctx, event)
		},
		func(s *State, stored calendar.Event) {
			replace(s.Events, placeholder, stored, eventId)
		})
}

func (w *Workspace) UpdateEvent(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	if _, _, ok := calendar.ParseOccurrenceId(event.Id); ok {
		return calendar.Event{}, calendar.ErrRecurringInstance
	}
	event = event.WithDefaults()
	if err := event.Validate(); err != nil {
		return calendar.Event{}, err
	}
	return mutate(ctx, w,
		func(s *State) error {
			if !replace(s.Events, event.Id, cloneEvent(event), eventId) {
				return calendar.ErrEventNotFound
			}
			return nil
		},
		func(ctx context.Context) (calendar.Event, error) {
			return w.store.UpdateEvent(ctx, event)
		},
		func(s *State, stored calendar.Event) {
			replace(s.Events, stored.Id, stored, eventId)
		})
}

// SetCompleted marks a stored event, or keeps a local override when the id is a generated
// occurrence.
func (w *Workspace) SetCompleted(ctx context.Context, id string, completed bool) (calendar.Event, error) {
	if _, _, ok := calendar.ParseOccurrenceId(id); ok {
		return w.setOccurrenceCompleted(id, completed)
	}
	return mutate(ctx, w,
		func(s *State) error {
			i := indexOf(s.Events, id, eventId)
			if i < 0 {
				return calendar.ErrEventNotFound
			}
			s.Events[i].Completed = completed
			return nil
		},
		func(ctx context.Context) (calendar.Event, error) {
			return w.store.SetCompleted(ctx, id, completed)
		},
		func(s *State, stored calendar.Event) {
			replace(s.Events, stored.Id, stored, eventId)
		})
}

func (w *Workspace) setOccurrenceCompleted(id string, completed bool) (calendar.Event, error) {
	templateId, n, _ := calendar.ParseOccurrenceId(id)
	w.ops.Lock()
	defer w.ops.Unlock()

	w.mu.Lock()
	i := indexOf(w.state.Events, templateId, eventId)
	if i < 0 {
		w.mu.Unlock()
		return calendar.Event{}, calendar.ErrEventNotFound
	}
	occurrence := cloneEvent(w.state.Events[i])
	w.state.Completed[id] = completed
	current := w.state.clone()
	w.mu.Unlock()

	log.Tracef("occurrence %d of %s marked completed=%t locally", n, templateId, completed)
	w.notify(current)

	occurrence.Id = id
	occurrence.TemplateId = templateId
	occurrence.IsRecurringInstance = true
	occurrence.Completed = completed
	return occurrence, nil
}

func (w *Workspace) DeleteEvent(ctx context.Context, id string) error {
	if _, _, ok := calendar.ParseOccurrenceId(id); ok {
		return calendar.ErrRecurringInstance
	}
	_, err := mutate(ctx, w,
		func(s *State) error {
			i := indexOf(s.Events, id, eventId)
			if i < 0 {
				return calendar.ErrEventNotFound
			}
			s.Events = slices.Delete(s.Events, i, i+1)
			return nil
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.store.DeleteEvent(ctx, id)
		},
		func(s *State, _ struct{}) {})
	return err
}

func (w *Workspace) CreateModule(ctx context.Context, m module.Module) (module.Module, error) {
	m = m.WithDefaults()
	if err := m.Validate(); err != nil {
		return module.Module{}, err
	}
	var placeholder string
	return mutate(ctx, w,
		func(s *State) error {
			placeholder = w.nextTentativeId()
			tentative := m
			tentative.Id = placeholder
			s.Modules = append(s.Modules, tentative)
			return nil
		},
		func(ctx context.Context) (module.Module, error) {
			return w.store.CreateModule(ctx, m)
		},
		func(s *State, stored module.Module) {
			replace(s.Modules, placeholder, stored, moduleId)
		})
}

func (w *Workspace) UpdateModule(ctx context.Context, m module.Module) (module.Module, error) {
	m = m.WithDefaults()
	if err := m.Validate(); err != nil {
		return module.Module{}, err
	}
	return mutate(ctx, w,
		func(s *State) error {
			if !replace(s.Modules, m.Id, m, moduleId) {
				return module.ErrModuleNotFound
			}
			return nil
		},
		func(ctx context.Context) (module.Module, error) {
			return w.store.UpdateModule(ctx, m)
		},
		func(s *State, stored module.Module) {
			replace(s.Modules, stored.Id, stored, moduleId)
		})
}

// DeleteModule removes the module and detaches its events and notes.
func (w *Workspace) DeleteModule(ctx context.Context, id string) error {
	_, err := mutate(ctx, w,
		func(s *State) error {
			i := indexOf(s.Modules, id, moduleId)
			if i < 0 {
				return module.ErrModuleNotFound
			}
			s.Modules = slices.Delete(s.Modules, i, i+1)
			for j := range s.Events {
				if s.Events[j].ModuleId == id {
					s.Events[j].ModuleId = calendar.NoModule
				}
			}
			for j := range s.Notes {
				if s.Notes[j].ModuleId == id {
					s.Notes[j].ModuleId = note.NoModule
				}
			}
			return nil
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.store.DeleteModule(ctx, id)
		},
		func(s *State, _ struct{}) {})
	return err
}

func (w *Workspace) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n = n.WithDefaults()
	var placeholder string
	return mutate(ctx, w,
		func(s *State) error {
			placeholder = w.nextTentativeId()
			tentative := n
			tentative.Id = placeholder
			s.Notes = append(s.Notes, tentative)
			return nil
		},
		func(ctx context.Context) (note.Note, error) {
			return w.store.CreateNote(ctx, n)
		},
		func(s *State, stored note.Note) {
			replace(s.Notes, placeholder, stored, noteId)
		})
}

func (w *Workspace) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n = n.WithDefaults()
	return mutate(ctx, w,
		func(s *State) error {
			i := indexOf(s.Notes, n.Id, noteId)
			if i < 0 {
				return note.ErrNoteNotFound
			}
			tentative := n
			tentative.CreatedAt = s.Notes[i].CreatedAt
			s.Notes[i] = tentative
			return nil
		},
		func(ctx context.Context) (note.Note, error) {
			return w.store.UpdateNote(ctx, n)
		},
		func(s *State, stored note.Note) {
			replace(s.Notes, stored.Id, stored, noteId)
		})
}

func (w *Workspace) DeleteNote(ctx context.Context, id string) error {
	_, err := mutate(ctx, w,
		func(s *State) error {
			i := indexOf(s.Notes, id, noteId)
			if i < 0 {
				return note.ErrNoteNotFound
			}
			s.Notes = slices.Delete(s.Notes, i, i+1)
			return nil
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.store.DeleteNote(ctx, id)
		},
		func(s *State, _ struct{}) {})
	return err
}

// mutate runs one mutation: apply it locally and notify, call the store, then reconcile on
// success or restore the previous state on failure. An apply error aborts before anything
// changes.
func mutate[T any](
	ctx context.Context,
	w *Workspace,
	apply func(*State) error,
	remote func(context.Context) (T, error),
	reconcile func(*State, T),
) (T, error) {
	var zero T
	w.ops.Lock()
	defer w.ops.Unlock()

	w.mu.Lock()
	if !w.loaded {
		w.mu.Unlock()
		return zero, ErrNotLoaded
	}
	snapshot := w.state.clone()
	if err := apply(&w.state); err != nil {
		w.state = snapshot
		w.mu.Unlock()
		return zero, err
	}
	w.state.Pending = true
	tentative := w.state.clone()
	w.mu.Unlock()
	w.notify(tentative)

	result, err := remote(ctx)

	w.mu.Lock()
	if err != nil {
		w.state = snapshot
	} else {
		reconcile(&w.state, result)
		w.state.Pending = false
	}
	current := w.state.clone()
	w.mu.Unlock()
	w.notify(current)

	if err != nil {
		log.Warnf("rolled back local change: %v", err)
		return zero, err
	}
	return result, nil
}

func (w *Workspace) nextTentativeId() string {
	w.tentative++
	return tentativePrefix + strconv.Itoa(w.tentative)
}

func (w *Workspace) notify(state State) {
	if w.listener != nil {
		w.listener(state)
	}
}

func replace[T any](items []T, id string, item T, idOf func(T) string) bool {
	i := indexOf(items, id, idOf)
	if i < 0 {
		return false
	}
	items[i] = item
	return true
}
