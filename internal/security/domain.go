// Package security holds the audit trail of sensitive console actions, the
// rules that assign each action a risk level, and the workflow that lets an
// authorised role approve a high-risk event.
package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/femar/gestao/internal/shared"
)

// RiskLevel is the coarse severity attached to an event.
type RiskLevel string

// Risk levels, lowest first.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskRank = map[RiskLevel]int{RiskLow: 1, RiskMedium: 2, RiskHigh: 3}

// Valid reports whether r is a known level.
func (r RiskLevel) Valid() bool {
	_, ok := riskRank[r]
	return ok
}

// Label returns the display name.
func (r RiskLevel) Label() string {
	switch r {
	case RiskLow:
		return "Baixo"
	case RiskMedium:
		return "Médio"
	case RiskHigh:
		return "Alto"
	default:
		return string(r)
	}
}

// ParseRiskLevel accepts an identifier or display label.
func ParseRiskLevel(raw string) (RiskLevel, error) {
	value := strings.TrimSpace(raw)
	for level := range riskRank {
		if strings.EqualFold(string(level), value) || strings.EqualFold(level.Label(), value) {
			return level, nil
		}
	}
	return "", fmt.Errorf("security: unknown risk level %q: %w", raw, shared.ErrValidation)
}

// State is the position of an event in the authorization workflow.
type State string

// Workflow states. Unflagged and Authorized are terminal.
const (
	StateUnflagged            State = "unflagged"
	StatePendingAuthorization State = "pending_authorization"
	StateAuthorized           State = "authorized"
)

// AuthorizationInfo records who approved a high-risk event and why.
type AuthorizationInfo struct {
	AuthorizedBy  string    `json:"authorized_by"`
	Timestamp     time.Time `json:"timestamp"`
	Justification string    `json:"justification"`
}

// Event is an audit record. It is immutable once appended except for the
// single attachment of Authorization.
type Event struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	User          string             `json:"user"`
	Action        string             `json:"action"`
	Details       string             `json:"details"`
	Risk          RiskLevel          `json:"risk_level"`
	Authorization *AuthorizationInfo `json:"authorization_info,omitempty"`
}

// State derives the workflow state from risk and authorization.
func (e Event) State() State {
	switch {
	case e.Risk != RiskHigh:
		return StateUnflagged
	case e.Authorization == nil:
		return StatePendingAuthorization
	default:
		return StateAuthorized
	}
}

// Pending reports whether the event awaits authorization.
func (e Event) Pending() bool {
	return e.State() == StatePendingAuthorization
}

func (e Event) clone() Event {
	if e.Authorization != nil {
		info := *e.Authorization
		e.Authorization = &info
	}
	return e
}

// NewEvent is the caller-supplied part of an event.
type NewEvent struct {
	User    string
	Action  string
	Details string
	Risk    RiskLevel
}

func (n NewEvent) validate() error {
	if strings.TrimSpace(n.User) == "" {
		return fmt.Errorf("security: event user required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(n.Action) == "" {
		return fmt.Errorf("security: event action required: %w", shared.ErrValidation)
	}
	if !n.Risk.Valid() {
		return fmt.Errorf("security: unknown risk level %q: %w", n.Risk, shared.ErrValidation)
	}
	return nil
}

var (
	// ErrEventNotFound indicates no event carries the requested id.
	ErrEventNotFound = fmt.Errorf("security: event not found: %w", shared.ErrNotFound)
	// ErrAlreadyAuthorized indicates the event already carries an authorization.
	ErrAlreadyAuthorized = fmt.Errorf("security: event already authorized: %w", shared.ErrConflict)
	// ErrJustificationRequired rejects a blank justification.
	ErrJustificationRequired = fmt.Errorf("security: justification required: %w", shared.ErrValidation)
	// ErrNotAuthorizable rejects authorization of an event below high risk.
	ErrNotAuthorizable = fmt.Errorf("security: event does not require authorization: %w", shared.ErrValidation)
	// ErrNotPending rejects dismissing an alert for an event that is not pending.
	ErrNotPending = fmt.Errorf("security: event is not pending authorization: %w", shared.ErrConflict)
	// ErrPermissionDenied rejects an authorization attempt by a role outside the authorizer set.
	ErrPermissionDenied = fmt.Errorf("security: role may not authorize events: %w", shared.ErrForbidden)
)
