package documents

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/femar/gestao/internal/platform/httpx"
	"github.com/femar/gestao/internal/rbac"
	"github.com/femar/gestao/internal/shared"
)

// Handler serves document endpoints.
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

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermViewAdministrative)).Get("/", h.list)
	r.With(h.rbac.RequireAny(rbac.PermUploadDocuments)).Post("/", h.upload)
}

type uploadRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	Size     int64  `json:"size" validate:"gte=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Documents())
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	subject, _ := rbac.SubjectFromContext(r.Context())
	var req uploadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, shared.FieldErrors(err))
		return
	}
	doc, err := h.service.Upload(r.Context(), subject.Email, req.FileName, req.Size)
	if err != nil {
		h.logger.Error("upload document", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}
