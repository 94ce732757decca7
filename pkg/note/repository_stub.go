package note

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu       sync.RWMutex
	notes    []Note
	owners   map[string]int
	nextId   int
	FailWith error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{owners: make(map[string]int), nextId: 1}
}

func (r *RepositoryStub) StoreNote(ctx context.Context, userId int, note Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Note{}, r.FailWith
	}

	note.Id = fmt.Sprintf("20000000-0000-0000-0000-%012d", r.nextId)
	r.nextId++
	r.notes = append(r.notes, note)
	r.owners[note.Id] = userId
	return note, nil
}

func (r *RepositoryStub) GetNote(ctx context.Context, userId int, noteId string) (Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(userId, noteId)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	return r.notes[i], nil
}

func (r *RepositoryStub) GetNotes(ctx context.Context, userId int) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Note, 0)
	for _, n := range r.notes {
		if r.owners[n.Id] == userId {
			result = append(result, n)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *RepositoryStub) UpdateNote(ctx context.Context, userId int, note Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return Note{}, r.FailWith
	}

	i := r.index(userId, note.Id)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	note.CreatedAt = r.notes[i].CreatedAt
	r.notes[i] = note
	return note, nil
}

func (r *RepositoryStub) DeleteNote(ctx context.Context, userId int, noteId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}

	i := r.index(userId, noteId)
	if i < 0 {
		return ErrNoteNotFound
	}
	r.notes = slices.Delete(r.notes, i, i+1)
	delete(r.owners, noteId)
	return nil
}

func (r *RepositoryStub) index(userId int, noteId string) int {
	return slices.IndexFunc(r.notes, func(n Note) bool {
		return n.Id == noteId && r.owners[n.Id] == userId
	})
}
