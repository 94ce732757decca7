package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, userId int, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const userColumns = `id, uid, email, display_name, theme, email_notifications, push_notifications, week_first_day`

func scanUser(row pgx.Row) (User, error) {
	var user User
	var theme string
	var weekFirstDay int16
	err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Email,
		&user.DisplayName,
		&theme,
		&user.Settings.EmailNotifications,
		&user.Settings.PushNotifications,
		&weekFirstDay,
	)
	user.Settings.Theme = Theme(theme)
	user.Settings.WeekFirstDay = weekdayOf(weekFirstDay)
	return user, err
}

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, email, display_name, theme, email_notifications, push_notifications, week_first_day)
				VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query,
		user.Uid,
		user.Email,
		user.DisplayName,
		string(user.Settings.Theme),
		user.Settings.EmailNotifications,
		user.Settings.PushNotifications,
		int16(user.Settings.WeekFirstDay),
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(u.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with id %d not found", id)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	user, err := scanUser(u.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with uid %s not found", uid)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	query := `UPDATE users SET display_name = $1, theme = $2, email_notifications = $3, push_notifications = $4,
				week_first_day = $5 WHERE id = $6`
	result, err := u.db.Exec(ctx, query,
		user.DisplayName,
		string(user.Settings.Theme),
		user.Settings.EmailNotifications,
		user.Settings.PushNotifications,
		int16(user.Settings.WeekFirstDay),
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return User{}, err
	}
	if result.RowsAffected() == 0 {
		log.Info("no rows affected of updating user")
		return User{}, ErrUserNotFound
	}
	return u.GetUser(ctx, userId)
}

// DeleteUser removes the user row. Sessions, events, modules and notes go with it through
// ON DELETE CASCADE.
func (u *UserRepoImpl) DeleteUser(ctx context.Context, id int) error {
	result, err := u.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		log.Info("no rows affected of deleting user")
		return ErrUserNotFound
	}
	return nil
}

func weekdayOf(day int16) time.Weekday {
	if day < 0 || day > 6 {
		return 0
	}
	return time.Weekday(day)
}
