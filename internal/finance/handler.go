package finance

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

// Handler serves finance endpoints.
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

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermViewFinance)).Get("/invoices", h.listInvoices)
	r.With(h.rbac.RequireAny(rbac.PermCreateInvoices)).Post("/invoices", h.uploadInvoice)
	r.With(h.rbac.RequireAny(rbac.PermGenerateReports)).Post("/reports", h.generateReport)
}

type uploadRequest struct {
	FileName string  `json:"file_name" validate:"required,max=255"`
	Amount   float64 `json:"amount" validate:"gt=0"`
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Invoices())
}

func (h *Handler) uploadInvoice(w http.ResponseWriter, r *http.Request) {
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
	result, err := h.service.UploadInvoice(r.Context(), subject.Email, req.FileName, req.Amount)
	if err != nil {
		h.logger.Error("upload invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if result.PendingAuthorization {
		status = http.StatusAccepted
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	subject, _ := rbac.SubjectFromContext(r.Context())
	report, err := h.service.GenerateReport(r.Context(), subject.Email)
	if err != nil {
		h.logger.Error("generate report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
