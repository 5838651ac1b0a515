package shared

import "errors"

// Error kinds shared by every domain package. Domain sentinels wrap one of
// these so the HTTP layer can map them without knowing the domain.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates the caller lacks the required capability.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates the resource is in a state that refuses the change.
	ErrConflict = errors.New("conflict")
	// ErrLocked indicates the caller must change their password first.
	ErrLocked = errors.New("password change required")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserSafeMessage returns a message suitable for API consumers.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrLocked),
		errors.Is(err, ErrInvalidCredentials):
		return err.Error()
	default:
		return "internal error"
	}
}
