package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aetas/aetas/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.AI {
	return config.AI{
		BaseURL:     baseURL,
		APIKey:      "secret",
		Model:       "llama3-70b-8192",
		Temperature: 0.7,
		MaxTokens:   2048,
		Timeout:     2 * time.Second,
	}
}

func TestChatClient_Complete(t *testing.T) {
	t.Run("should send bearer authenticated completion request", func(t *testing.T) {
		// given
		var received completionRequest
		var authorization string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
			authorization = r.Header.Get("Authorization")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "**42**"}}]}`))
		}))
		defer server.Close()
		client := NewChatClient(testConfig(server.URL + "/openai/v1/"))

		// when
		answer, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Why?"}}, 1000)

		// then
		require.NoError(t, err)
		assert.Equal(t, "**42**", answer)
		assert.Equal(t, "Bearer secret", authorization)
		assert.Equal(t, "llama3-70b-8192", received.Model)
		assert.Equal(t, 1000, received.MaxTokens)
		assert.Equal(t, 0.7, received.Temperature)
		assert.Equal(t, []Message{{Role: RoleUser, Content: "Why?"}}, received.Messages)
	})

	t.Run("should use configured max tokens by default", func(t *testing.T) {
		var received completionRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
		}))
		defer server.Close()

		_, err := NewChatClient(testConfig(server.URL)).Complete(context.Background(), nil, 0)

		require.NoError(t, err)
		assert.Equal(t, 2048, received.MaxTokens)
	})

	t.Run("should fail without api key and without calling upstream", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()
		cfg := testConfig(server.URL)
		cfg.APIKey = ""

		_, err := NewChatClient(cfg).Complete(context.Background(), nil, 0)

		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.False(t, called)
	})

	t.Run("should surface upstream error message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "rate limit reached"}}`))
		}))
		defer server.Close()

		_, err := NewChatClient(testConfig(server.URL)).Complete(context.Background(), nil, 0)

		assert.ErrorIs(t, err, ErrUpstream)
		assert.Contains(t, err.Error(), "rate limit reached")
	})

	t.Run("should fail on empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		_, err := NewChatClient(testConfig(server.URL)).Complete(context.Background(), nil, 0)

		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("should give up after timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)
		cfg := testConfig(server.URL)
		cfg.Timeout = 50 * time.Millisecond

		_, err := NewChatClient(cfg).Complete(context.Background(), nil, 0)

		assert.ErrorIs(t, err, ErrUpstream)
	})
}
