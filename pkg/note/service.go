package note

import (
	"context"
	"fmt"

	"github.com/aetas/aetas/internal/event_bus"
	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListNotes(ctx context.Context) ([]Note, error)
	GetNote(ctx context.Context, noteId string) (Note, error)
	CreateNote(ctx context.Context, note Note) (Note, error)
	UpdateNote(ctx context.Context, note Note) (Note, error)
	DeleteNote(ctx context.Context, noteId string) error
}

type ServiceImpl struct {
	repo  Repository
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewService(repo Repository, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus, clock: clock}
}

func (s *ServiceImpl) ListNotes(ctx context.Context) ([]Note, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetNotes(ctx, userId)
}

func (s *ServiceImpl) GetNote(ctx context.Context, noteId string) (Note, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Note{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetNote(ctx, userId, noteId)
}

func (s *ServiceImpl) CreateNote(ctx context.Context, note Note) (Note, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Note{}, fmt.Errorf("failed to get current user: %w", err)
	}
	now := utils.WallClock(s.clock.Now())
	note = note.WithDefaults()
	note.CreatedAt = now
	note.UpdatedAt = now

	stored, err := s.repo.StoreNote(ctx, userId, note)
	if err != nil {
		return Note{}, fmt.Errorf("failed to store note: %w", err)
	}
	s.changed(ctx, userId)
	return stored, nil
}

// UpdateNote replaces title, content and module of the note and bumps its update time.
func (s *ServiceImpl) UpdateNote(ctx context.Context, note Note) (Note, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Note{}, fmt.Errorf("failed to get current user: %w", err)
	}
	note = note.WithDefaults()
	note.UpdatedAt = utils.WallClock(s.clock.Now())

	updated, err := s.repo.UpdateNote(ctx, userId, note)
	if err != nil {
		return Note{}, fmt.Errorf("failed to update note: %w", err)
	}
	s.changed(ctx, userId)
	return updated, nil
}

func (s *ServiceImpl) DeleteNote(ctx context.Context, noteId string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.repo.DeleteNote(ctx, userId, noteId); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	s.changed(ctx, userId)
	return nil
}

func (s *ServiceImpl) changed(ctx context.Context, userId int) {
	if err := s.bus.PublishTableChanged(ctx, event_bus.TableNotes, userId); err != nil {
		log.Errorf("failed to publish notes change for user %d: %v", userId, err)
	}
}
