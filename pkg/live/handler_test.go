package live

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Stream(t *testing.T) {
	t.Run("should stream snapshots as server sent events", func(t *testing.T) {
		// given
		f := setup(t, nil)
		_, err := f.calendar.CreateEvent(f.ctx, exam())
		require.NoError(t, err)
		handler := NewHandler(f.hub)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler.Stream(w, r.WithContext(user.WithUser(r.Context(), f.user)))
		}))
		defer server.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/live/view", nil)
		require.NoError(t, err)

		// when
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		// then
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
		reader := bufio.NewReader(resp.Body)
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "event: snapshot\n", line)
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(line, "data: "))
		var dto SnapshotDTO
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &dto))
		require.Len(t, dto.List.Today, 1)
		assert.Equal(t, "Exam", dto.List.Today[0].Title)
	})

	t.Run("should answer 401 without user", func(t *testing.T) {
		handler := NewHandler(setup(t, nil).hub)
		w := httptest.NewRecorder()

		handler.Stream(w, httptest.NewRequest(http.MethodGet, "/api/live/view", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Intents(t *testing.T) {
	f := setup(t, nil)
	handler := NewHandler(f.hub)

	var created calendar.EventDTO
	t.Run("should create event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/live/event", strings.NewReader(`{
			"title": "Lecture",
			"start": "2024-06-10T09:00:00Z",
			"end": "2024-06-10T10:00:00Z",
			"recurrence": {"frequency": "daily", "interval": 1}
		}`)).WithContext(f.ctx)
		w := httptest.NewRecorder()

		handler.CreateEvent(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		stored, err := f.events.GetEvent(f.ctx, f.userId, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "Lecture", stored.Title)
	})

	t.Run("should complete a single occurrence locally", func(t *testing.T) {
		occurrenceId := calendar.OccurrenceId(created.Id, 1)
		req := httptest.NewRequest(http.MethodPatch, "/api/live/event/"+occurrenceId+"/completed",
			strings.NewReader(`{"completed": true}`)).WithContext(f.ctx)
		req = mux.SetURLVars(req, map[string]string{"eventId": occurrenceId})
		w := httptest.NewRecorder()

		handler.SetCompleted(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var dto calendar.EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.True(t, dto.Completed)
		assert.True(t, dto.IsRecurringInstance)
		stored, err := f.events.GetEvent(f.ctx, f.userId, created.Id)
		require.NoError(t, err)
		assert.False(t, stored.Completed)
	})

	t.Run("should answer 409 when updating an occurrence", func(t *testing.T) {
		occurrenceId := calendar.OccurrenceId(created.Id, 1)
		req := httptest.NewRequest(http.MethodPut, "/api/live/event/"+occurrenceId,
			strings.NewReader(`{"title": "x", "start": "2024-06-11T09:00:00Z", "end": "2024-06-11T10:00:00Z"}`)).WithContext(f.ctx)
		req = mux.SetURLVars(req, map[string]string{"eventId": occurrenceId})
		w := httptest.NewRecorder()

		handler.UpdateEvent(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should delete event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/live/event/"+created.Id, nil).WithContext(f.ctx)
		req = mux.SetURLVars(req, map[string]string{"eventId": created.Id})
		w := httptest.NewRecorder()

		handler.DeleteEvent(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		_, err := f.events.GetEvent(f.ctx, f.userId, created.Id)
		assert.ErrorIs(t, err, calendar.ErrEventNotFound)
		f.hub.mu.Lock()
		assert.Empty(t, f.hub.sessions)
		f.hub.mu.Unlock()
	})

	t.Run("should answer 401 without user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/live/event/x", nil)
		w := httptest.NewRecorder()

		handler.DeleteEvent(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
