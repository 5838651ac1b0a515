package rbac

import (
	"log/slog"
	"net/http"

	"github.com/femar/gestao/internal/platform/httpx"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Evaluator *Evaluator
	Logger    *slog.Logger
}

// RequireSubject rejects requests without an identified subject.
func (m Middleware) RequireSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SubjectFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "identify with X-User-Email")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUnlocked suppresses every action for a subject who must change their
// password first. Routes that stay reachable must be mounted outside it.
func (m Middleware) RequireUnlocked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SubjectFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "identify with X-User-Email")
			return
		}
		if IsRoleLocked(s) {
			if m.Logger != nil {
				m.Logger.Info("locked subject blocked", slog.String("user", s.Email), slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusLocked, "Locked", "password change required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current subject holds at least one of perms.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SubjectFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "identify with X-User-Email")
				return
			}
			if m.Evaluator.HasAny(s.Role, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac require any denied", slog.String("user", s.Email), slog.String("role", string(s.Role)))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission")
		})
	}
}
