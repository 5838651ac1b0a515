package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/femar/gestao/internal/platform/httpx"
)

// PermissionsHandler manages the role-permission matrix.
type PermissionsHandler struct {
	logger *slog.Logger
	matrix *Matrix
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, matrix *Matrix, rbac Middleware) *PermissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionsHandler{logger: logger, matrix: matrix, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermManagePermissions))
		r.Get("/", h.listPermissions)
		r.Post("/save", h.save)
		r.Post("/{role}/{permission}", h.grant)
		r.Delete("/{role}/{permission}", h.revoke)
	})
}

type roleColumn struct {
	ID          Role         `json:"id"`
	Label       string       `json:"label"`
	Permissions []Permission `json:"permissions"`
}

type matrixView struct {
	Areas []AreaGroup  `json:"areas"`
	Roles []roleColumn `json:"roles"`
}

type mutationResult struct {
	Role       Role       `json:"role"`
	Permission Permission `json:"permission"`
	Changed    bool       `json:"changed"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	snapshot := h.matrix.Snapshot()
	view := matrixView{Areas: GroupByArea()}
	for _, role := range Roles() {
		view.Roles = append(view.Roles, roleColumn{ID: role, Label: role.Label(), Permissions: snapshot[role]})
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *PermissionsHandler) grant(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.matrix.Grant)
}

func (h *PermissionsHandler) revoke(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.matrix.Revoke)
}

func (h *PermissionsHandler) mutate(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, Role, Permission) (bool, error)) {
	subject, _ := SubjectFromContext(r.Context())
	role, err := ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	perm, err := ParsePermission(chi.URLParam(r, "permission"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	changed, err := apply(r.Context(), subject.Email, role, perm)
	if err != nil {
		h.logger.Error("permission matrix mutation", slog.Any("error", err), slog.String("role", string(role)), slog.String("permission", string(perm)))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutationResult{Role: role, Permission: perm, Changed: changed})
}

func (h *PermissionsHandler) save(w http.ResponseWriter, r *http.Request) {
	subject, _ := SubjectFromContext(r.Context())
	result, err := h.matrix.Save(r.Context(), subject.Email)
	if err != nil {
		h.logger.Error("save permission matrix", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
