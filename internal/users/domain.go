// Package users keeps the console's user directory and the account actions
// that feed the security log.
package users

import (
	"fmt"

	"github.com/femar/gestao/internal/rbac"
	"github.com/femar/gestao/internal/shared"
)

// User represents a console account.
type User struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Role                rbac.Role `json:"role"`
	ForcePasswordChange bool      `json:"force_password_change"`
}

// Subject converts the account into the identity used by access checks.
func (u User) Subject() rbac.Subject {
	return rbac.Subject{
		UserID:              u.ID,
		Email:               u.Email,
		Name:                u.Name,
		Role:                u.Role,
		ForcePasswordChange: u.ForcePasswordChange,
	}
}

// CreateInput carries the fields of a new account.
type CreateInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// UpdateInput carries editable account fields. Empty fields keep their value.
type UpdateInput struct {
	Name  string `json:"name" validate:"omitempty,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role"`
}

// PasswordInput carries a password change.
type PasswordInput struct {
	Password     string `json:"password" validate:"required,min=8"`
	Confirmation string `json:"confirmation" validate:"required"`
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var (
	// ErrUserNotFound indicates no account matches.
	ErrUserNotFound = fmt.Errorf("users: user not found: %w", shared.ErrNotFound)
	// ErrEmailTaken rejects a duplicate email.
	ErrEmailTaken = fmt.Errorf("users: email already registered: %w", shared.ErrConflict)
	// ErrPasswordTooShort rejects passwords below MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("users: password must have at least %d characters: %w", MinPasswordLength, shared.ErrValidation)
	// ErrPasswordMismatch rejects a confirmation that differs from the password.
	ErrPasswordMismatch = fmt.Errorf("users: password confirmation does not match: %w", shared.ErrValidation)
	// ErrSelfDelete rejects deleting the acting account.
	ErrSelfDelete = fmt.Errorf("users: cannot delete own account: %w", shared.ErrConflict)
)
