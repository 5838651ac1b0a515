// Package alert keeps the anti-fraud notification settings and forwards
// high-risk security events to the configured destination.
package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/femar/gestao/internal/rbac"
	"github.com/femar/gestao/internal/security"
	"github.com/femar/gestao/internal/shared"
)

// DefaultEmail is used when no destination is configured.
const DefaultEmail = "seguranca@femar.org.br"

// ActionAlertEmailChanged labels the event raised when the destination changes.
const ActionAlertEmailChanged = "E-mail de alerta alterado"

var (
	// ErrPermissionDenied rejects settings changes without manageAntiFraudSettings.
	ErrPermissionDenied = fmt.Errorf("alert: missing permission %s: %w", rbac.PermManageAntiFraudSettings, shared.ErrForbidden)
	// ErrInvalidEmail rejects a destination that is not an email address.
	ErrInvalidEmail = fmt.Errorf("alert: invalid email: %w", shared.ErrValidation)
)

type emailForm struct {
	Email string `validate:"required,email"`
}

// Destination holds the address alerts are sent to.
type Destination struct {
	mu    sync.RWMutex
	email string
}

// NewDestination constructs a Destination. An empty email falls back to
// DefaultEmail.
func NewDestination(email string) *Destination {
	email = strings.TrimSpace(email)
	if email == "" {
		email = DefaultEmail
	}
	return &Destination{email: email}
}

// Email returns the current address.
func (d *Destination) Email() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.email
}

func (d *Destination) swap(email string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	previous := d.email
	d.email = email
	return previous
}

// Settings changes the destination on behalf of a subject.
type Settings struct {
	dest      *Destination
	evaluator *rbac.Evaluator
	recorder  *security.Recorder
	validate  *validator.Validate
}

// NewSettings constructs Settings.
func NewSettings(dest *Destination, evaluator *rbac.Evaluator, recorder *security.Recorder) *Settings {
	return &Settings{
		dest:      dest,
		evaluator: evaluator,
		recorder:  recorder,
		validate:  validator.New(),
	}
}

// Email returns the current destination.
func (s *Settings) Email() string {
	return s.dest.Email()
}

// SetEmail changes the destination on behalf of subject.
func (s *Settings) SetEmail(ctx context.Context, subject rbac.Subject, email string) error {
	if rbac.IsRoleLocked(subject) || !s.evaluator.HasPermission(subject.Role, rbac.PermManageAntiFraudSettings) {
		return ErrPermissionDenied
	}
	email = strings.TrimSpace(email)
	if err := s.validate.Struct(emailForm{Email: email}); err != nil {
		return ErrInvalidEmail
	}

	previous := s.dest.swap(email)

	if s.recorder == nil {
		return nil
	}
	details := fmt.Sprintf("Destino dos alertas alterado de %s para %s.", previous, email)
	_, err := s.recorder.Record(ctx, subject.Email, security.Signal{Kind: security.KindAlertSettingsChange}, ActionAlertEmailChanged, details)
	return err
}
