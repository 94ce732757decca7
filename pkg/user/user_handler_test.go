package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CurrentUser(t *testing.T) {
	t.Run("should return current user", func(t *testing.T) {
		// given
		service, ctx, _ := setupService(t)
		handler := NewHandler(service)
		req := httptest.NewRequest(http.MethodGet, "/api/user/current", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		handler.CurrentUser(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var dto UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "google-123", dto.Uid)
		assert.Equal(t, "dark", dto.Settings.Theme)
		assert.Equal(t, "sunday", dto.Settings.WeekStartDay)
	})

	t.Run("should answer 401 without user", func(t *testing.T) {
		service, _, _ := setupService(t)
		handler := NewHandler(service)
		w := httptest.NewRecorder()

		handler.CurrentUser(w, httptest.NewRequest(http.MethodGet, "/api/user/current", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_UpdateUser(t *testing.T) {
	t.Run("should update settings", func(t *testing.T) {
		// given
		service, ctx, _ := setupService(t)
		handler := NewHandler(service)
		body, _ := json.Marshal(UserDTO{
			DisplayName: "Ada",
			Settings:    SettingsDTO{Theme: "light", WeekStartDay: "monday", PushNotifications: true},
		})
		req := httptest.NewRequest(http.MethodPut, "/api/user/current", bytes.NewReader(body)).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		handler.UpdateUser(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var dto UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "light", dto.Settings.Theme)
		assert.Equal(t, "monday", dto.Settings.WeekStartDay)
		assert.False(t, dto.Settings.EmailNotifications)
	})

	t.Run("should reject missing display name", func(t *testing.T) {
		service, ctx, _ := setupService(t)
		handler := NewHandler(service)
		req := httptest.NewRequest(http.MethodPut, "/api/user/current", bytes.NewBufferString(`{}`)).WithContext(ctx)
		w := httptest.NewRecorder()

		handler.UpdateUser(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject malformed body", func(t *testing.T) {
		service, _, _ := setupService(t)
		handler := NewHandler(service)
		w := httptest.NewRecorder()

		handler.UpdateUser(w, httptest.NewRequest(http.MethodPut, "/api/user/current", bytes.NewBufferString(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_DeleteCurrentUser(t *testing.T) {
	service, ctx, _ := setupService(t)
	handler := NewHandler(service)
	w := httptest.NewRecorder()

	handler.DeleteCurrentUser(w, httptest.NewRequest(http.MethodDelete, "/api/user/current", nil).WithContext(ctx))

	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err := service.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNoUser)
}
