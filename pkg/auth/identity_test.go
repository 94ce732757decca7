package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Validate(t *testing.T) {
	assert.NoError(t, Identity{Subject: "google-1", Email: "ada@example.com"}.Validate())
	assert.NoError(t, Identity{Subject: "google-1"}.Validate())
	assert.ErrorIs(t, Identity{Email: "ada@example.com"}.Validate(), ErrInvalidIdentity)
	assert.ErrorIs(t, Identity{Subject: "google-1", Email: "not an email"}.Validate(), ErrInvalidIdentity)
}

func TestIdentity_User(t *testing.T) {
	t.Run("should use display name", func(t *testing.T) {
		u := Identity{Subject: "s", Email: "ada@example.com", DisplayName: "Ada"}.User()

		assert.Equal(t, "s", u.Uid)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, "Ada", u.DisplayName)
	})

	t.Run("should fall back to email local part", func(t *testing.T) {
		assert.Equal(t, "ada", Identity{Subject: "s", Email: "ada@example.com"}.User().DisplayName)
	})

	t.Run("should fall back to subject", func(t *testing.T) {
		assert.Equal(t, "s", Identity{Subject: "s"}.User().DisplayName)
	})
}

func TestSession_Expired(t *testing.T) {
	expires := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: expires}

	assert.False(t, s.Expired(expires.Add(-time.Second)))
	assert.True(t, s.Expired(expires))
}
