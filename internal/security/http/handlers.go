// Package securityhttp exposes the security event timeline, the authorization
// workflow and the alert settings over HTTP.
package securityhttp

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/femar/gestao/internal/alert"
	"github.com/femar/gestao/internal/platform/httpx"
	"github.com/femar/gestao/internal/rbac"
	"github.com/femar/gestao/internal/security"
	"github.com/femar/gestao/internal/shared"
)

// ActionAuditExport labels the event raised by a CSV export.
const ActionAuditExport = "Exportação do log de auditoria"

// Handler serves the security module.
type Handler struct {
	logger   *slog.Logger
	log      *security.Log
	workflow *security.Workflow
	recorder *security.Recorder
	settings *alert.Settings
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, log *security.Log, workflow *security.Workflow, recorder *security.Recorder, settings *alert.Settings, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		log:      log,
		workflow: workflow,
		recorder: recorder,
		settings: settings,
		rbac:     rbac,
		validate: validator.New(),
	}
}

type authorizeRequest struct {
	Justification string `json:"justification"`
}

type alertEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type alertView struct {
	Alert        *security.Event `json:"alert"`
	Pending      int             `json:"pending"`
	CanAuthorize bool            `json:"can_authorize"`
	Destination  string          `json:"destination"`
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	filter, page, pageSize, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.log.Timeline(filter, page, pageSize))
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.log.Get(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	subject, _ := rbac.SubjectFromContext(r.Context())
	var req authorizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	// Blank justifications are rejected by the workflow after the role check.
	e, err := h.workflow.Authorize(r.Context(), subject, chi.URLParam(r, "id"), req.Justification)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) currentAlert(w http.ResponseWriter, r *http.Request) {
	subject, _ := rbac.SubjectFromContext(r.Context())
	view := alertView{
		CanAuthorize: h.workflow.CanAuthorize(subject),
		Destination:  h.settings.Email(),
	}
	e, pending, ok := h.log.PendingAlert()
	view.Pending = pending
	if ok {
		view.Alert = &e
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) dismissAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.log.DismissAlert(chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getAlertEmail(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, alertEmailRequest{Email: h.settings.Email()})
}

func (h *Handler) putAlertEmail(w http.ResponseWriter, r *http.Request) {
	subject, _ := rbac.SubjectFromContext(r.Context())
	var req alertEmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, shared.FieldErrors(err))
		return
	}
	if err := h.settings.SetEmail(r.Context(), subject, req.Email); err != nil {
		if !errors.Is(err, shared.ErrForbidden) && !errors.Is(err, shared.ErrValidation) {
			h.logger.Error("update alert email", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, alertEmailRequest{Email: h.settings.Email()})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	subject, _ := rbac.SubjectFromContext(r.Context())
	filter, _, _, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	events := h.log.Query(filter)
	var buf bytes.Buffer
	if err := security.WriteCSV(&buf, events); err != nil {
		h.logger.Error("encode csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	details := fmt.Sprintf("%d evento(s) exportado(s) em CSV.", len(events))
	if _, err := h.recorder.Record(r.Context(), subject.Email, security.Signal{Kind: security.KindDataExport}, ActionAuditExport, details); err != nil {
		h.logger.Error("record audit export", slog.Any("error", err))
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"security-events.csv\"")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func parseFilters(r *http.Request) (security.Filter, int, int, error) {
	q := r.URL.Query()
	var filter security.Filter
	for _, raw := range q["risk"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			level, err := security.ParseRiskLevel(part)
			if err != nil {
				return security.Filter{}, 0, 0, err
			}
			filter.Risks = append(filter.Risks, level)
		}
	}
	if v := strings.TrimSpace(q.Get("pending")); v != "" {
		pending, err := strconv.ParseBool(v)
		if err != nil {
			return security.Filter{}, 0, 0, fmt.Errorf("securityhttp: invalid pending flag: %w", shared.ErrValidation)
		}
		filter.PendingOnly = pending
	}
	filter.User = strings.TrimSpace(q.Get("user"))
	filter.Action = strings.TrimSpace(q.Get("action"))

	page := 1
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return security.Filter{}, 0, 0, fmt.Errorf("securityhttp: invalid page: %w", shared.ErrValidation)
		}
		page = parsed
	}
	pageSize := security.DefaultPageSize
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return security.Filter{}, 0, 0, fmt.Errorf("securityhttp: invalid page_size: %w", shared.ErrValidation)
		}
		pageSize = parsed
	}
	return filter, page, pageSize, nil
}
