package user

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	FindOrCreate(ctx context.Context, user User) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteCurrentUser(ctx context.Context) error
}

type Provider interface {
	GetCurrentUser(ctx context.Context) (User, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if user.Settings == (Settings{}) {
		user.Settings = DefaultSettings()
	}
	if err := user.Validate(); err != nil {
		return User{}, err
	}
	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

// FindOrCreate returns the stored user with the uid of the given one, registering it on first
// login.
func (u *UserServiceImpl) FindOrCreate(ctx context.Context, user User) (User, error) {
	existing, err := u.repo.GetUserByUid(ctx, user.Uid)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}
	log.Infof("registering new user %s", user.Uid)
	return u.CreateUser(ctx, user)
}

func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	user.Uid = current.Uid
	if err := user.Validate(); err != nil {
		return User{}, err
	}
	return u.repo.UpdateUser(ctx, current.Id, user)
}

func (u *UserServiceImpl) DeleteCurrentUser(ctx context.Context) error {
	userId, err := CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.DeleteUser(ctx, userId)
}
