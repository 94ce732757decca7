package assistant

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aetas/aetas/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(handler http.HandlerFunc, path, body string, withUser bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if withUser {
		req = req.WithContext(ctx)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) rest.ErrorResponse {
	t.Helper()
	var body rest.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHandler_Chat(t *testing.T) {
	t.Run("should answer with response", func(t *testing.T) {
		handler := NewHandler(NewService(&CompleterStub{Answer: "# Hi"}, notesStub{}, modulesStub{}))

		w := post(handler.Chat, "/api/assistant/chat", `{"message": "hello"}`, true)

		assert.Equal(t, http.StatusOK, w.Code)
		var body ResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "# Hi", body.Response)
	})

	t.Run("should answer 400 for missing message", func(t *testing.T) {
		handler := NewHandler(NewService(&CompleterStub{}, notesStub{}, modulesStub{}))

		w := post(handler.Chat, "/api/assistant/chat", `{}`, true)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Message is required", decodeError(t, w).Error)
	})

	t.Run("should answer 500 when not configured", func(t *testing.T) {
		handler := NewHandler(NewService(&CompleterStub{FailWith: ErrNotConfigured}, notesStub{}, modulesStub{}))

		w := post(handler.Chat, "/api/assistant/chat", `{"message": "hello"}`, true)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "API key not configured", decodeError(t, w).Error)
	})

	t.Run("should answer 500 on upstream failure", func(t *testing.T) {
		handler := NewHandler(NewService(&CompleterStub{FailWith: errors.Join(ErrUpstream, errors.New("boom"))}, notesStub{}, modulesStub{}))

		w := post(handler.Chat, "/api/assistant/chat", `{"message": "hello"}`, true)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to get response from AI service", decodeError(t, w).Error)
	})

	t.Run("should answer 401 without user", func(t *testing.T) {
		handler := NewHandler(NewService(&CompleterStub{}, notesStub{}, modulesStub{}))

		w := post(handler.Chat, "/api/assistant/chat", `{"message": "hello"}`, false)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_SearchNotes(t *testing.T) {
	t.Run("should answer with response", func(t *testing.T) {
		handler := NewHandler(NewService(&CompleterStub{Answer: "found"}, notesStub{}, modulesStub{}))

		w := post(handler.SearchNotes, "/api/assistant/search", `{"query": "vectors"}`, true)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should answer 400 for blank query", func(t *testing.T) {
		handler := NewHandler(NewService(&CompleterStub{}, notesStub{}, modulesStub{}))

		w := post(handler.SearchNotes, "/api/assistant/search", `{"query": " "}`, true)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Query is required", decodeError(t, w).Error)
	})
}
