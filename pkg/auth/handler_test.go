package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerStub struct {
	identity Identity
	err      error
	code     string
}

func (p *providerStub) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *providerStub) Exchange(ctx context.Context, code string) (Identity, error) {
	p.code = code
	return p.identity, p.err
}

var appConfig = config.Application{
	Host:    "http://localhost:8181",
	Session: config.Session{CookieName: "aetas_session", TTL: 24 * time.Hour},
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func login(t *testing.T, handler *Handler, finalUrl string) (state string, nonce *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/login?finalUrl="+url.QueryEscape(finalUrl), nil)
	w := httptest.NewRecorder()
	handler.GoogleLogin(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var redirect loginRedirect
	require.NoError(t, json.NewDecoder(w.Body).Decode(&redirect))
	parsed, err := url.Parse(redirect.RedirectUrl)
	require.NoError(t, err)
	return parsed.Query().Get("state"), cookieNamed(w.Result().Cookies(), stateCookieName)
}

func callback(handler *Handler, state string, nonce *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state="+url.QueryEscape(state), nil)
	if nonce != nil {
		req.AddCookie(nonce)
	}
	w := httptest.NewRecorder()
	handler.GoogleCallback(w, req)
	return w
}

func TestHandler_GoogleLogin(t *testing.T) {
	t.Run("should open session on callback", func(t *testing.T) {
		// given
		f := setup(t)
		provider := &providerStub{identity: ada}
		handler := NewHandler(f.service, provider, appConfig)
		state, nonce := login(t, handler, "/calendar")
		require.NotNil(t, nonce)
		assert.True(t, strings.HasPrefix(state, "/calendar|"))

		// when
		w := callback(handler, state, nonce)

		// then
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/calendar?success=true", w.Header().Get("Location"))
		assert.Equal(t, "abc", provider.code)
		session := cookieNamed(w.Result().Cookies(), "aetas_session")
		require.NotNil(t, session)
		assert.True(t, session.HttpOnly)
		u, err := f.service.Authenticate(context.Background(), session.Value)
		require.NoError(t, err)
		assert.Equal(t, "google-ada", u.Uid)
	})

	t.Run("should refuse callback with foreign state", func(t *testing.T) {
		f := setup(t)
		provider := &providerStub{identity: ada}
		handler := NewHandler(f.service, provider, appConfig)
		_, nonce := login(t, handler, "/")

		w := callback(handler, "/|someone-elses-nonce", nonce)

		assert.Equal(t, "/?success=false", w.Header().Get("Location"))
		assert.Empty(t, provider.code)
		assert.Nil(t, cookieNamed(w.Result().Cookies(), "aetas_session"))
	})

	t.Run("should report failed exchange", func(t *testing.T) {
		f := setup(t)
		handler := NewHandler(f.service, &providerStub{err: errors.New("invalid_grant")}, appConfig)
		state, nonce := login(t, handler, "/notes")

		w := callback(handler, state, nonce)

		assert.Equal(t, "/notes?success=false", w.Header().Get("Location"))
	})

	t.Run("should not redirect off site", func(t *testing.T) {
		f := setup(t)
		handler := NewHandler(f.service, &providerStub{identity: ada}, appConfig)
		state, nonce := login(t, handler, "https://evil.example.com")

		w := callback(handler, state, nonce)

		assert.Equal(t, "/?success=true", w.Header().Get("Location"))
	})
}

func TestHandler_Session(t *testing.T) {
	t.Run("should return current user", func(t *testing.T) {
		handler := NewHandler(setup(t).service, &providerStub{}, appConfig)
		ctx := user.WithUser(context.Background(), user.User{Id: 3, Uid: "u3", DisplayName: "Ada"})
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		handler.GetSession(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var dto SessionDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, SessionDTO{Id: 3, Uid: "u3", DisplayName: "Ada"}, dto)
	})

	t.Run("should answer 401 without user", func(t *testing.T) {
		handler := NewHandler(setup(t).service, &providerStub{}, appConfig)
		w := httptest.NewRecorder()

		handler.GetSession(w, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should delete session and clear cookie", func(t *testing.T) {
		// given
		f := setup(t)
		handler := NewHandler(f.service, &providerStub{}, appConfig)
		session, err := f.service.Login(context.Background(), ada)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: "aetas_session", Value: session.Token})
		w := httptest.NewRecorder()

		// when
		handler.DeleteSession(w, req)

		// then
		assert.Equal(t, http.StatusNoContent, w.Code)
		cleared := cookieNamed(w.Result().Cookies(), "aetas_session")
		require.NotNil(t, cleared)
		assert.Equal(t, -1, cleared.MaxAge)
		_, err = f.service.Authenticate(context.Background(), session.Token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}
