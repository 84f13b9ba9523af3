package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/forgevyn/zenzero/internal/rest"
	"github.com/forgevyn/zenzero/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// publicRoutes are reachable without a session.
var publicRoutes = map[string]bool{
	http.MethodPost + " /api/session": true,
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(sessionMiddleware(deps.UserService))
}

// sessionMiddleware resolves the X-Session-Token header into the current user. API requests
// without a valid session are rejected with 401.
func sessionMiddleware(users user.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !strings.HasPrefix(req.URL.Path, "/api/") || publicRoutes[req.Method+" "+req.URL.Path] {
				next.ServeHTTP(w, req)
				return
			}

			token := req.Header.Get(user.SessionTokenHeader)
			if token == "" {
				rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "Missing "+user.SessionTokenHeader+" header")
				return
			}

			u, err := users.ResolveSession(req.Context(), token)
			if err != nil {
				if errors.Is(err, user.ErrSessionNotFound) {
					log.Debug("session not found")
					rest.WriteError(w, http.StatusUnauthorized, "Session expired", "Please sign in again")
					return
				}
				log.Errorf("failed to resolve session: %v", err)
				rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
				return
			}
			log.Tracef("session of user %s", u.Uid)
			next.ServeHTTP(w, req.WithContext(user.WithSession(req.Context(), u, token)))
		})
	}
}
