package users

import (
	"context"
	"strings"
	"sync"

	"github.com/femar/gestao/internal/rbac"
)

// DefaultUsers returns the seeded accounts.
func DefaultUsers() []User {
	return []User{
		{ID: "user-1", Name: "Admin User", Email: "admin@femar.org.br", Role: rbac.RoleNetworkAdmin},
		{ID: "user-2", Name: "Ana Silva", Email: "ana.silva@femar.org.br", Role: rbac.RoleManager, ForcePasswordChange: true},
		{ID: "user-3", Name: "Carlos Pereira", Email: "carlos.pereira@femar.org.br", Role: rbac.RoleCollaborator, ForcePasswordChange: true},
		{ID: "user-4", Name: "João Mendes", Email: "joao.mendes@femar.org.br", Role: rbac.RoleSuperintendent},
		{ID: "user-5", Name: "Sandra Gomes", Email: "sandra.gomes@femar.org.br", Role: rbac.RoleAuditor},
	}
}

// MemoryRepository keeps accounts in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
	order []string
}

// NewMemoryRepository seeds a repository.
func NewMemoryRepository(seed []User) *MemoryRepository {
	r := &MemoryRepository{users: make(map[string]User, len(seed))}
	for _, u := range seed {
		r.users[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	return r
}

// ListUsers returns all users in creation order.
func (r *MemoryRepository) ListUsers(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}

// FindByID returns the user with id.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// FindByEmail matches email case-insensitively.
func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

// Save inserts or replaces u. Emails stay unique.
func (r *MemoryRepository) Save(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	if _, ok := r.users[u.ID]; !ok {
		r.order = append(r.order, u.ID)
	}
	r.users[u.ID] = u
	return nil
}

// Delete removes the user with id.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
