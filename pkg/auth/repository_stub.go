package auth

import (
	"context"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu       sync.Mutex
	sessions map[string]Session
	FailWith error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{sessions: make(map[string]Session)}
}

func (r *RepositoryStub) StoreSession(ctx context.Context, session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.sessions[session.Token] = session
	return nil
}

func (r *RepositoryStub) GetSession(ctx context.Context, token string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (r *RepositoryStub) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, token)
	return nil
}

func (r *RepositoryStub) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for token, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}
