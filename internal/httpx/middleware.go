package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/tiendaonline/backend/internal/auth"
	"github.com/tiendaonline/backend/internal/users"
)

type ctxKey int

const actorKey ctxKey = iota

// ActorFrom returns the authenticated actor placed by the auth middleware.
func ActorFrom(ctx context.Context) (users.Actor, bool) {
	a, ok := ctx.Value(actorKey).(users.Actor)
	return a, ok
}

// Authenticator resolves the bearer token (Authorization header or `jwt`
// cookie) to an actor and stores it in the request context. Requests without
// a usable token, including invalid or expired ones, pass through anonymous
// so public routes stay reachable; RequireRole decides per route.
func Authenticator(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}

// RequireRole gates a route to authenticated actors carrying one of the
// given roles.
func RequireRole(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "autenticación requerida")
				return
			}
			for _, role := range roles {
				if actor.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "ACCESS_DENIED", "no tienes permisos para acceder a este recurso")
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("jwt"); err == nil {
		return c.Value
	}
	return ""
}
