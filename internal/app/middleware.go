package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aetas/aetas/internal/config"
	"github.com/aetas/aetas/internal/rest"
	"github.com/aetas/aetas/pkg/auth"
	"github.com/aetas/aetas/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const userIdHeader = "X-User-Id"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.Use(authenticate(deps.AuthService, deps.UserService, cfg.Session.CookieName))
}

// authenticate puts the requesting user into the context. The session cookie wins; a trusted
// proxy may instead pass the user's uid in the X-User-Id header. API calls other than the
// login flow are refused without a user.
func authenticate(sessions auth.Service, users user.Service, cookieName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			authenticated := false

			if cookie, err := req.Cookie(cookieName); err == nil && cookie.Value != "" {
				u, err := sessions.Authenticate(ctx, cookie.Value)
				switch {
				case err == nil:
					ctx = user.WithUser(ctx, u)
					authenticated = true
				case errors.Is(err, auth.ErrSessionNotFound):
					log.Debug("session cookie does not match any active session")
				default:
					log.Errorf("failed to authenticate session: %v", err)
					rest.WriteError(w, http.StatusInternalServerError, "Failed to authenticate", "")
					return
				}
			}

			if uid := req.Header.Get(userIdHeader); !authenticated && uid != "" {
				u, err := users.GetUserByUid(ctx, uid)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", uid)
						rest.WriteError(w, http.StatusForbidden, "User not found", "")
						return
					}
					log.Errorf("failed to get user: %v", err)
					rest.WriteError(w, http.StatusInternalServerError, "Failed to authenticate", "")
					return
				}
				ctx = user.WithUser(ctx, u)
				authenticated = true
			}

			if !authenticated && requiresUser(req.URL.Path) {
				rest.WriteError(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func requiresUser(path string) bool {
	return strings.HasPrefix(path, "/api/") && !strings.HasPrefix(path, "/api/auth/")
}
