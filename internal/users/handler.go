package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/femar/gestao/internal/platform/httpx"
	"github.com/femar/gestao/internal/rbac"
	"github.com/femar/gestao/internal/shared"
)

// IdentityHeader carries the acting user's email.
const IdentityHeader = "X-User-Email"

// Handler manages account endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validate: validator.New()}
}

// Identify resolves IdentityHeader into a subject on the request context.
// Requests without the header pass through anonymous.
func (h *Handler) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.Header.Get(IdentityHeader))
		if email == "" {
			next.ServeHTTP(w, r)
			return
		}
		u, err := h.service.Resolve(r.Context(), email)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown user")
				return
			}
			h.logger.Error("resolve identity", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.WithSubject(r.Context(), u.Subject())))
	})
}

// MountAuthRoutes registers login and logout.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermManagePermissions))
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Put("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User                User `json:"user"`
	ForcePasswordChange bool `json:"force_password_change"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, shared.FieldErrors(err))
		return
	}
	u, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{User: u, ForcePasswordChange: u.ForcePasswordChange})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if s, ok := rbac.SubjectFromContext(r.Context()); ok {
		h.logger.Info("logout", slog.String("user", s.Email))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword serves POST /me/password. It stays reachable for locked
// subjects.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	subject, ok := rbac.SubjectFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "identify with "+IdentityHeader)
		return
	}
	var req PasswordInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	u, err := h.service.ChangePassword(r.Context(), subject, req)
	if err != nil {
		h.respond(w, "change password", err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.respond(w, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.SubjectFromContext(r.Context())
	var req CreateInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, shared.FieldErrors(err))
		return
	}
	u, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.respond(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.SubjectFromContext(r.Context())
	var req UpdateInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, shared.FieldErrors(err))
		return
	}
	u, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		h.respond(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.SubjectFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.respond(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respond(w http.ResponseWriter, op string, err error) {
	if shared.UserSafeMessage(err) == "internal error" {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
