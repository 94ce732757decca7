package calendar

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	items   map[string]Event // id -> event
	userIds map[string]int   // id -> userId
	order   []string
	nextId  int
	// FailWith makes every mutation return the given error.
	FailWith error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:   make(map[string]Event),
		userIds: make(map[string]int),
		nextId:  1,
	}
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, userId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Event{}, r.FailWith
	}

	event.Id = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.nextId)
	r.nextId++
	event = event.WithDefaults()
	r.items[event.Id] = event
	r.userIds[event.Id] = userId
	r.order = append(r.order, event.Id)
	return event, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, userId int, eventId string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[eventId]
	if !ok || r.userIds[eventId] != userId {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, userId int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0)
	for _, id := range r.order {
		if r.userIds[id] == userId {
			result = append(result, r.items[id])
		}
	}
	sortByStart(result)
	return result, nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, userId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Event{}, r.FailWith
	}

	if _, ok := r.items[event.Id]; !ok || r.userIds[event.Id] != userId {
		return Event{}, ErrEventNotFound
	}
	event = event.WithDefaults()
	r.items[event.Id] = event
	return event, nil
}

func (r *RepositoryStub) SetCompleted(ctx context.Context, userId int, eventId string, completed bool) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Event{}, r.FailWith
	}

	event, ok := r.items[eventId]
	if !ok || r.userIds[eventId] != userId {
		return Event{}, ErrEventNotFound
	}
	event.Completed = completed
	r.items[eventId] = event
	return event, nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, userId int, eventId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	if _, ok := r.items[eventId]; !ok || r.userIds[eventId] != userId {
		return ErrEventNotFound
	}
	delete(r.items, eventId)
	delete(r.userIds, eventId)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == eventId })
	return nil
}

// ClearModule drops the module reference of every event pointing at moduleId, like the
// database does on module deletion.
func (r *RepositoryStub) ClearModule(moduleId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.items {
		if e.ModuleId == moduleId {
			e.ModuleId = NoModule
			r.items[id] = e
		}
	}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]Event)
	r.userIds = make(map[string]int)
	r.order = nil
	r.nextId = 1
	r.FailWith = nil
}
