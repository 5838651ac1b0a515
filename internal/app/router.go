package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/femar/gestao/internal/documents"
	"github.com/femar/gestao/internal/finance"
	"github.com/femar/gestao/internal/observability"
	"github.com/femar/gestao/internal/platform/httpx"
	"github.com/femar/gestao/internal/rbac"
	securityhttp "github.com/femar/gestao/internal/security/http"
	"github.com/femar/gestao/internal/users"
	"github.com/femar/gestao/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	RBACMiddleware     rbac.Middleware
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	SecurityHandler    *securityhttp.Handler
	FinanceHandler     *finance.Handler
	DocumentsHandler   *documents.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

type subjectView struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Role                rbac.Role `json:"role"`
	RoleLabel           string    `json:"role_label"`
	ForcePasswordChange bool      `json:"force_password_change"`
}

type navView struct {
	User   subjectView    `json:"user"`
	Locked bool           `json:"locked"`
	Items  []rbac.NavItem `json:"items"`
}

// NewRouter constructs the chi.Router with console defaults. Subjects that
// must change their password reach only /me and /auth/logout.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(requestLogger(params.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	rbacMW := params.RBACMiddleware
	r.Group(func(r chi.Router) {
		r.Use(params.UsersHandler.Identify)
		r.Route("/auth", params.UsersHandler.MountAuthRoutes)

		r.Group(func(r chi.Router) {
			r.Use(rbacMW.RequireSubject)
			r.Get("/me/nav", navHandler(rbacMW.Evaluator))
			r.Post("/me/password", params.UsersHandler.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(rbacMW.RequireUnlocked)
				r.Route("/users", params.UsersHandler.MountRoutes)
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
				r.Route("/security", params.SecurityHandler.MountRoutes)
				r.Route("/finance", params.FinanceHandler.MountRoutes)
				r.Route("/documents", params.DocumentsHandler.MountRoutes)
				if params.JobHandler != nil {
					r.With(rbacMW.RequireAny(rbac.PermViewSecurity)).Route("/jobs", params.JobHandler.MountRoutes)
				}
			})
		})
	})

	return r
}

func navHandler(evaluator *rbac.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := rbac.SubjectFromContext(r.Context())
		httpx.JSON(w, http.StatusOK, navView{
			User: subjectView{
				ID:                  s.UserID,
				Name:                s.Name,
				Email:               s.Email,
				Role:                s.Role,
				RoleLabel:           s.Role.Label(),
				ForcePasswordChange: s.ForcePasswordChange,
			},
			Locked: rbac.IsRoleLocked(s),
			Items:  evaluator.VisibleNavItems(s, rbac.DefaultNav()),
		})
	}
}
