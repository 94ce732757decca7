package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Login(ctx context.Context, identity Identity) (Session, error)
	Authenticate(ctx context.Context, token string) (user.User, error)
	Logout(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) error
}

// Users is the part of the user service that sessions rely on.
type Users interface {
	FindOrCreate(ctx context.Context, user user.User) (user.User, error)
	GetUser(ctx context.Context, id int) (user.User, error)
}

type ServiceImpl struct {
	repo  Repository
	users Users
	clock utils.Clock
	ttl   time.Duration
}

func NewService(repo Repository, users Users, clock utils.Clock, ttl time.Duration) *ServiceImpl {
	return &ServiceImpl{repo: repo, users: users, clock: clock, ttl: ttl}
}

// Login registers the identity's user on first sight and opens a new session for it.
func (s *ServiceImpl) Login(ctx context.Context, identity Identity) (Session, error) {
	if err := identity.Validate(); err != nil {
		return Session{}, err
	}
	u, err := s.users.FindOrCreate(ctx, identity.User())
	if err != nil {
		return Session{}, fmt.Errorf("failed to find or create user: %w", err)
	}

	now := s.clock.Now().UTC()
	session := Session{
		Token:     uuid.NewString(),
		UserId:    u.Id,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.StoreSession(ctx, session); err != nil {
		return Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	log.Infof("user %d signed in", u.Id)
	return session, nil
}

// Authenticate resolves the user a session token belongs to. Expired sessions are removed and
// reported as missing.
func (s *ServiceImpl) Authenticate(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrSessionNotFound
	}
	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return user.User{}, err
	}
	if session.Expired(s.clock.Now()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
			log.Warnf("failed to delete expired session: %v", err)
		}
		return user.User{}, ErrSessionNotFound
	}
	u, err := s.users.GetUser(ctx, session.UserId)
	if errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, ErrSessionNotFound
	}
	return u, err
}

func (s *ServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrSessionNotFound
	}
	return s.repo.DeleteSession(ctx, token)
}

func (s *ServiceImpl) PurgeExpired(ctx context.Context) error {
	deleted, err := s.repo.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if deleted > 0 {
		log.Debugf("deleted %d expired sessions", deleted)
	}
	return nil
}
