package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/rest"
	"github.com/aetas/aetas/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const stateCookieName = "aetas_oauth_state"

type loginRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type SessionDTO struct {
	Id          int    `json:"id"`
	Uid         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type Handler struct {
	authService Service
	provider    IdentityProvider
	cfg         config.Session
	secure      bool
}

func NewHandler(authService Service, provider IdentityProvider, cfg config.Application) *Handler {
	return &Handler{
		authService: authService,
		provider:    provider,
		cfg:         cfg.Session,
		secure:      strings.HasPrefix(cfg.Host, "https://"),
	}
}

// GoogleLogin godoc
// @Summary Start Google login
// @Description Returns the URL to redirect the browser to. finalUrl is where the callback sends the browser afterwards.
// @Tags Auth
// @Produce json
// @Param finalUrl query string false "Where to return after login"
// @Success 200 {object} loginRedirect
// @Router /api/auth/google/login [get]
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	nonce := uuid.NewString()
	finalUrl := r.URL.Query().Get("finalUrl")
	if finalUrl == "" {
		finalUrl = "/"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    nonce,
		Path:     "/api/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	log.Tracef("Redirecting to Google auth URL with nonce: %s", nonce)
	rest.WriteJSON(w, http.StatusOK, loginRedirect{RedirectUrl: h.provider.AuthCodeURL(finalUrl + "|" + nonce)})
}

// GoogleCallback godoc
// @Summary Finish Google login
// @Description Opens a session and redirects to the final URL with success=true or success=false
// @Tags Auth
// @Param code query string true "Authorization code"
// @Param state query string true "State"
// @Success 302 "Found"
// @Router /api/auth/google/callback [get]
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	finalUrl, nonce, ok := strings.Cut(r.FormValue("state"), "|")
	if !ok || !isLocalPath(finalUrl) {
		finalUrl = "/"
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/api/auth", MaxAge: -1})

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || nonce == "" || stateCookie.Value != nonce {
		log.Warn("oauth callback with mismatching state")
		http.Redirect(w, r, withSuccess(finalUrl, false), http.StatusFound)
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("failed to resolve identity: %v", err)
		http.Redirect(w, r, withSuccess(finalUrl, false), http.StatusFound)
		return
	}
	session, err := h.authService.Login(r.Context(), identity)
	if err != nil {
		log.Errorf("failed to log in %s: %v", identity.Subject, err)
		http.Redirect(w, r, withSuccess(finalUrl, false), http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	log.Debugf("Session opened for user %d", session.UserId)
	http.Redirect(w, r, withSuccess(finalUrl, true), http.StatusFound)
}

// GetSession godoc
// @Summary Current session
// @Tags Auth
// @Produce json
// @Success 200 {object} SessionDTO
// @Failure 401 {object} rest.ErrorResponse "Unauthorized"
// @Router /api/auth/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	u, err := user.CurrentUser(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, SessionDTO{Id: u.Id, Uid: u.Uid, Email: u.Email, DisplayName: u.DisplayName})
}

// DeleteSession godoc
// @Summary Log out
// @Tags Auth
// @Success 204 "No Content"
// @Router /api/auth/session [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.CookieName); err == nil {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil && !errors.Is(err, ErrSessionNotFound) {
			log.Errorf("failed to delete session: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to log out", "")
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: h.cfg.CookieName, Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.secure})
	w.WriteHeader(http.StatusNoContent)
}

func isLocalPath(target string) bool {
	return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//")
}

func withSuccess(target string, success bool) string {
	u, err := url.Parse(target)
	if err != nil {
		return "/"
	}
	query := u.Query()
	if success {
		query.Set("success", "true")
	} else {
		query.Set("success", "false")
	}
	u.RawQuery = query.Encode()
	return u.String()
}
