package module

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	modules []Module
	owners  map[string]int
	nextId  int
	// Detached receives the id of every deleted module, standing in for the foreign key update
	// the database performs.
	Detached []string
	FailWith error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{owners: make(map[string]int), nextId: 1}
}

func (r *RepositoryStub) StoreModule(ctx context.Context, userId int, module Module) (Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Module{}, r.FailWith
	}

	module.Id = fmt.Sprintf("10000000-0000-0000-0000-%012d", r.nextId)
	r.nextId++
	r.modules = append(r.modules, module)
	r.owners[module.Id] = userId
	return module, nil
}

func (r *RepositoryStub) GetModule(ctx context.Context, userId int, moduleId string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(userId, moduleId)
	if i < 0 {
		return Module{}, ErrModuleNotFound
	}
	return r.modules[i], nil
}

func (r *RepositoryStub) GetModules(ctx context.Context, userId int) ([]Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Module, 0)
	for _, m := range r.modules {
		if r.owners[m.Id] == userId {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *RepositoryStub) UpdateModule(ctx context.Context, userId int, module Module) (Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Module{}, r.FailWith
	}

	i := r.index(userId, module.Id)
	if i < 0 {
		return Module{}, ErrModuleNotFound
	}
	r.modules[i] = module
	return module, nil
}

func (r *RepositoryStub) DeleteModule(ctx context.Context, userId int, moduleId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	i := r.index(userId, moduleId)
	if i < 0 {
		return ErrModuleNotFound
	}
	r.modules = slices.Delete(r.modules, i, i+1)
	delete(r.owners, moduleId)
	r.Detached = append(r.Detached, moduleId)
	return nil
}

func (r *RepositoryStub) index(userId int, moduleId string) int {
	return slices.IndexFunc(r.modules, func(m Module) bool {
		return m.Id == moduleId && r.owners[m.Id] == userId
	})
}
