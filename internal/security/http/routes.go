package securityhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/femar/gestao/internal/platform/httpx"
	"github.com/femar/gestao/internal/rbac"
)

const exportRateLimit = 10
const exportRateWindow = time.Minute

// MountRoutes registers the security endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export rate limit exceeded")
		}),
	)

	// Authorization is gated by the workflow's own role check.
	r.Post("/events/{id}/authorize", h.authorize)
	r.Put("/settings/alert-email", h.putAlertEmail)

	r.Group(func(gr chi.Router) {
		gr.Use(h.rbac.RequireAny(rbac.PermViewSecurity))
		gr.Get("/events", h.listEvents)
		gr.Get("/events/{id}", h.getEvent)
		gr.Get("/alert", h.currentAlert)
		gr.Post("/alert/{id}/dismiss", h.dismissAlert)
		gr.Get("/settings/alert-email", h.getAlertEmail)
		gr.With(limiter).Get("/export.csv", h.exportCSV)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if s, ok := rbac.SubjectFromContext(r.Context()); ok && s.Email != "" {
		return "user:" + s.Email, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
