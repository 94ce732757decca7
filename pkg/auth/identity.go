package auth

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/aetas/aetas/pkg/user"
)

var (
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrSessionNotFound = errors.New("session not found")
)

// Identity is what the identity provider tells us about the person that signed in.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
}

func (i Identity) Validate() error {
	if strings.TrimSpace(i.Subject) == "" {
		return errors.Join(ErrInvalidIdentity, errors.New("subject is required"))
	}
	if i.Email != "" {
		if _, err := mail.ParseAddress(i.Email); err != nil {
			return errors.Join(ErrInvalidIdentity, err)
		}
	}
	return nil
}

// User maps the identity to the local user it signs in as. The display name falls back to the
// local part of the email.
func (i Identity) User() user.User {
	name := strings.TrimSpace(i.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(i.Email, "@")
	}
	if name == "" {
		name = i.Subject
	}
	return user.User{Uid: i.Subject, Email: i.Email, DisplayName: name}
}

type Session struct {
	Token     string
	UserId    int
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
