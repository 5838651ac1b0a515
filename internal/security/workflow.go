package security

import (
	"context"
	"log/slog"

	"github.com/femar/gestao/internal/rbac"
)

// DefaultAuthorizers returns the roles allowed to authorize high-risk events.
func DefaultAuthorizers() []rbac.Role {
	return []rbac.Role{rbac.RoleNetworkAdmin, rbac.RoleSuperintendent, rbac.RoleManager}
}

// Workflow moves high-risk events from pending to authorized. The role check
// happens here, before the log is touched.
type Workflow struct {
	log         *Log
	authorizers map[rbac.Role]struct{}
	observer    Observer
	logger      *slog.Logger
}

// NewWorkflow builds a Workflow. An empty authorizer list uses DefaultAuthorizers.
func NewWorkflow(log *Log, authorizers []rbac.Role, observer Observer, logger *slog.Logger) *Workflow {
	if len(authorizers) == 0 {
		authorizers = DefaultAuthorizers()
	}
	if logger == nil {
		logger = slog.Default()
	}
	set := make(map[rbac.Role]struct{}, len(authorizers))
	for _, role := range authorizers {
		set[role] = struct{}{}
	}
	return &Workflow{log: log, authorizers: set, observer: observer, logger: logger}
}

// CanAuthorize reports whether s may authorize events.
func (w *Workflow) CanAuthorize(s rbac.Subject) bool {
	if rbac.IsRoleLocked(s) {
		return false
	}
	_, ok := w.authorizers[s.Role]
	return ok
}

// Authorize approves a pending event on behalf of s.
func (w *Workflow) Authorize(ctx context.Context, s rbac.Subject, eventID, justification string) (Event, error) {
	if !w.CanAuthorize(s) {
		w.logger.Warn("authorization denied",
			slog.String("event_id", eventID),
			slog.String("user", s.Email),
			slog.String("role", string(s.Role)),
		)
		if w.observer != nil {
			w.observer.AuthorizationRejected("permission_denied")
		}
		return Event{}, ErrPermissionDenied
	}
	e, err := w.log.Authorize(ctx, eventID, s.Email, justification)
	if err != nil {
		if w.observer != nil {
			w.observer.AuthorizationRejected(rejectionReason(err))
		}
		return Event{}, err
	}
	return e, nil
}

func rejectionReason(err error) string {
	switch err {
	case ErrEventNotFound:
		return "not_found"
	case ErrAlreadyAuthorized:
		return "already_authorized"
	case ErrJustificationRequired:
		return "justification_required"
	case ErrNotAuthorizable:
		return "not_authorizable"
	default:
		return "error"
	}
}
