package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/femar/gestao/internal/rbac"
	"github.com/femar/gestao/internal/security"
	"github.com/femar/gestao/internal/shared"
)

// Action labels recorded in the security log.
const (
	ActionLoginSucceeded  = "Login bem-sucedido"
	ActionLoginFailed     = "Tentativa de login falhou"
	ActionPasswordChanged = "Senha alterada"
	ActionUserCreated     = "Usuário criado"
	ActionUserUpdated     = "Usuário atualizado"
	ActionUserDeleted     = "Usuário excluído"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Save(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
}

// PermissionChecker reports whether a role currently holds a permission.
type PermissionChecker interface {
	HasPermission(role rbac.Role, p rbac.Permission) bool
}

// Service handles user business logic.
type Service struct {
	repo         RepositoryPort
	recorder     *security.Recorder
	permissions  PermissionChecker
	demoPassword string
	validate     *validator.Validate
	logger       *slog.Logger
	newID        func() string
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithPermissionChecker lets the service flag account changes that hand out
// the permission matrix.
func WithPermissionChecker(c PermissionChecker) ServiceOption {
	return func(s *Service) { s.permissions = c }
}

// NewService builds Service instance. Every account accepts demoPassword; the
// console has no credential store.
func NewService(repo RepositoryPort, recorder *security.Recorder, demoPassword string, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:         repo,
		recorder:     recorder,
		demoPassword: demoPassword,
		validate:     validator.New(),
		logger:       logger,
		newID:        func() string { return "user-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// Resolve finds the account behind an email header.
func (s *Service) Resolve(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Authenticate checks the demo password for email. Both outcomes are recorded.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}
	ok := err == nil && subtle.ConstantTimeCompare([]byte(password), []byte(s.demoPassword)) == 1
	if !ok {
		if email != "" {
			s.record(ctx, email, security.Signal{Kind: security.KindLoginFailed}, ActionLoginFailed, "Credenciais inválidas.")
		}
		return User{}, shared.ErrInvalidCredentials
	}
	s.record(ctx, u.Email, security.Signal{Kind: security.KindLogin}, ActionLoginSucceeded, "Acesso ao console.")
	return u, nil
}

// ChangePassword updates the acting user's password and clears the forced
// change flag. Only the flag is stored.
func (s *Service) ChangePassword(ctx context.Context, subject rbac.Subject, in PasswordInput) (User, error) {
	if len(in.Password) < MinPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	if in.Password != in.Confirmation {
		return User{}, ErrPasswordMismatch
	}
	u, err := s.repo.FindByID(ctx, subject.UserID)
	if err != nil {
		return User{}, err
	}
	u.ForcePasswordChange = false
	if err := s.repo.Save(ctx, u); err != nil {
		return User{}, err
	}
	s.record(ctx, u.Email, security.Signal{Kind: security.KindPasswordChange}, ActionPasswordChanged, "Senha do usuário alterada.")
	return u, nil
}

// Create adds a new account. New accounts must change their password on
// first access.
func (s *Service) Create(ctx context.Context, actor rbac.Subject, in CreateInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return User{}, fmt.Errorf("users: %w: %w", shared.ErrValidation, err)
	}
	role, err := rbac.ParseRole(in.Role)
	if err != nil {
		return User{}, err
	}
	u := User{ID: s.newID(), Name: in.Name, Email: in.Email, Role: role, ForcePasswordChange: true}
	if err := s.repo.Save(ctx, u); err != nil {
		return User{}, err
	}
	sig := security.Signal{Kind: security.KindUserCreate}
	if s.canManagePermissions(role) {
		sig.Permission = rbac.PermManagePermissions
	}
	s.record(ctx, actor.Email, sig, ActionUserCreated,
		fmt.Sprintf("Usuário %s criado com o perfil %s.", u.Email, role.Label()))
	return u, nil
}

// Update edits an account.
func (s *Service) Update(ctx context.Context, actor rbac.Subject, id string, in UpdateInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return User{}, fmt.Errorf("users: %w: %w", shared.ErrValidation, err)
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	previous := u.Role
	if strings.TrimSpace(in.Role) != "" {
		role, err := rbac.ParseRole(in.Role)
		if err != nil {
			return User{}, err
		}
		u.Role = role
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return User{}, err
	}
	sig := security.Signal{Kind: security.KindUserUpdate}
	if s.canManagePermissions(u.Role) && !s.canManagePermissions(previous) {
		sig.Permission = rbac.PermManagePermissions
	}
	s.record(ctx, actor.Email, sig, ActionUserUpdated,
		fmt.Sprintf("Usuário %s atualizado (perfil %s).", u.Email, u.Role.Label()))
	return u, nil
}

// Delete removes an account other than the actor's own.
func (s *Service) Delete(ctx context.Context, actor rbac.Subject, id string) error {
	if id == actor.UserID {
		return ErrSelfDelete
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor.Email, security.Signal{Kind: security.KindUserDelete}, ActionUserDeleted,
		fmt.Sprintf("Usuário %s excluído.", u.Email))
	return nil
}

func (s *Service) canManagePermissions(role rbac.Role) bool {
	return s.permissions != nil && s.permissions.HasPermission(role, rbac.PermManagePermissions)
}

func (s *Service) record(ctx context.Context, actor string, sig security.Signal, action, details string) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Record(ctx, actor, sig, action, details); err != nil {
		s.logger.Error("record security event", slog.Any("error", err), slog.String("action", action))
	}
}
