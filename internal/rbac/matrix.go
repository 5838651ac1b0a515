package rbac

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/femar/gestao/internal/shared"
)

// Auditor receives the security-relevant side effects of matrix changes.
type Auditor interface {
	PrivilegeEscalation(ctx context.Context, actor string, role Role) error
	MatrixSaved(ctx context.Context, actor string, changes int) error
}

// SaveResult acknowledges a save of the permission matrix.
type SaveResult struct {
	Changes int       `json:"changes"`
	SavedAt time.Time `json:"saved_at"`
}

// Matrix maps every role to its granted capabilities. Changes apply
// immediately; Save only acknowledges them.
type Matrix struct {
	mu      sync.RWMutex
	grants  map[Role]map[Permission]struct{}
	pending int
	auditor Auditor
	now     func() time.Time
}

// NewMatrix seeds a matrix from assignments. Every role receives an entry,
// possibly empty. Unknown roles or permissions in seed are rejected.
func NewMatrix(seed map[Role][]Permission, auditor Auditor) (*Matrix, error) {
	m := &Matrix{
		grants:  make(map[Role]map[Permission]struct{}, len(roleLabels)),
		auditor: auditor,
		now:     time.Now,
	}
	for _, role := range Roles() {
		m.grants[role] = make(map[Permission]struct{})
	}
	for role, perms := range seed {
		set, ok := m.grants[role]
		if !ok {
			return nil, fmt.Errorf("rbac: seed role %q: %w", role, shared.ErrValidation)
		}
		for _, p := range perms {
			if !p.Valid() {
				return nil, fmt.Errorf("rbac: seed permission %q for %s: %w", p, role, shared.ErrValidation)
			}
			set[p] = struct{}{}
		}
	}
	return m, nil
}

// Get returns the capabilities held by role in catalog order.
func (m *Matrix) Get(role Role) []Permission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.grants[role]
	if !ok {
		return []Permission{}
	}
	return sortByCatalog(set)
}

// Has reports whether role holds p.
func (m *Matrix) Has(role Role, p Permission) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.grants[role][p]
	return ok
}

// Grant adds p to role. Granting managePermissions to a role that did not
// hold it raises a privilege escalation event through the auditor; when the
// event cannot be recorded the grant is rolled back.
func (m *Matrix) Grant(ctx context.Context, actor string, role Role, p Permission) (bool, error) {
	if err := validatePair(role, p); err != nil {
		return false, err
	}
	m.mu.Lock()
	set := m.grants[role]
	_, held := set[p]
	if !held {
		set[p] = struct{}{}
		m.pending++
	}
	m.mu.Unlock()

	if held {
		return false, nil
	}
	if p == PermManagePermissions && m.auditor != nil {
		if err := m.auditor.PrivilegeEscalation(ctx, actor, role); err != nil {
			m.rollback(role, p)
			return false, fmt.Errorf("rbac: record privilege escalation: %w", err)
		}
	}
	return true, nil
}

func (m *Matrix) rollback(role Role, p Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.grants[role][p]; !ok {
		return
	}
	delete(m.grants[role], p)
	if m.pending > 0 {
		m.pending--
	}
}

// Revoke removes p from role.
func (m *Matrix) Revoke(_ context.Context, _ string, role Role, p Permission) (bool, error) {
	if err := validatePair(role, p); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.grants[role]
	if _, held := set[p]; !held {
		return false, nil
	}
	delete(set, p)
	m.pending++
	return true, nil
}

// Save acknowledges the current matrix and records a matrix change event.
func (m *Matrix) Save(ctx context.Context, actor string) (SaveResult, error) {
	m.mu.Lock()
	changes := m.pending
	m.pending = 0
	m.mu.Unlock()

	result := SaveResult{Changes: changes, SavedAt: m.now()}
	if m.auditor != nil {
		if err := m.auditor.MatrixSaved(ctx, actor, changes); err != nil {
			return result, fmt.Errorf("rbac: record matrix save: %w", err)
		}
	}
	return result, nil
}

// Snapshot copies the whole matrix.
func (m *Matrix) Snapshot() map[Role][]Permission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Role][]Permission, len(m.grants))
	for role, set := range m.grants {
		out[role] = sortByCatalog(set)
	}
	return out
}

func validatePair(role Role, p Permission) error {
	if !role.Valid() {
		return fmt.Errorf("rbac: unknown role %q: %w", role, shared.ErrValidation)
	}
	if !p.Valid() {
		return fmt.Errorf("rbac: unknown permission %q: %w", p, shared.ErrValidation)
	}
	return nil
}
