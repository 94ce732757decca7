package user

import (
	"errors"
	"net/mail"
	"time"
)

var ErrUserDataInvalid = errors.New("invalid user data")

type User struct {
	Id          int
	Uid         string
	Email       string
	DisplayName string
	Settings    Settings
}

type Theme string

const (
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
	ThemeSystem Theme = "system"
)

type Settings struct {
	Theme              Theme
	EmailNotifications bool
	PushNotifications  bool
	WeekFirstDay       time.Weekday
}

func DefaultSettings() Settings {
	return Settings{
		Theme:              ThemeDark,
		EmailNotifications: true,
		PushNotifications:  true,
		WeekFirstDay:       time.Sunday,
	}
}

// Validate checks the fields a user needs before it is stored.
func (u User) Validate() error {
	if u.Uid == "" {
		return errors.Join(ErrUserDataInvalid, errors.New("uid is required"))
	}
	if u.DisplayName == "" {
		return errors.Join(ErrUserDataInvalid, errors.New("display name is required"))
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return errors.Join(ErrUserDataInvalid, err)
		}
	}
	return u.Settings.Validate()
}

func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeDark, ThemeLight, ThemeSystem:
	default:
		return errors.Join(ErrUserDataInvalid, errors.New("unknown theme: "+string(s.Theme)))
	}
	if s.WeekFirstDay < time.Sunday || s.WeekFirstDay > time.Saturday {
		return errors.Join(ErrUserDataInvalid, errors.New("week first day out of range"))
	}
	return nil
}
