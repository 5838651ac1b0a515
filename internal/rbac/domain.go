package rbac

import (
	"fmt"
	"strings"

	"github.com/femar/gestao/internal/shared"
)

// Role is a user category with an associated permission set.
type Role string

// Roles known to the console. The set is closed; roles are never created at runtime.
const (
	RoleNetworkAdmin   Role = "network-admin"
	RoleSuperintendent Role = "superintendent"
	RoleManager        Role = "manager"
	RoleCollaborator   Role = "collaborator"
	RoleAuditor        Role = "auditor"
)

var roleLabels = map[Role]string{
	RoleNetworkAdmin:   "Administrador de Rede",
	RoleSuperintendent: "Superintendente",
	RoleManager:        "Gerente",
	RoleCollaborator:   "Colaborador",
	RoleAuditor:        "Auditor",
}

// Roles returns every role in display order.
func Roles() []Role {
	return []Role{RoleNetworkAdmin, RoleSuperintendent, RoleManager, RoleCollaborator, RoleAuditor}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the display name.
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// ParseRole accepts a role identifier or its display label.
func ParseRole(raw string) (Role, error) {
	value := strings.TrimSpace(raw)
	if r := Role(strings.ToLower(value)); r.Valid() {
		return r, nil
	}
	for role, label := range roleLabels {
		if strings.EqualFold(label, value) {
			return role, nil
		}
	}
	return "", fmt.Errorf("rbac: unknown role %q: %w", raw, shared.ErrValidation)
}

// Permission is a granular capability identifier.
type Permission string

// Capabilities in catalog order.
const (
	PermViewDashboard           Permission = "viewDashboard"
	PermViewProjects            Permission = "viewProjects"
	PermCreateProjects          Permission = "createProjects"
	PermEditProjects            Permission = "editProjects"
	PermDeleteProjects          Permission = "deleteProjects"
	PermViewAdministrative      Permission = "viewAdministrative"
	PermUploadDocuments         Permission = "uploadDocuments"
	PermManageContacts          Permission = "manageContacts"
	PermViewFinance             Permission = "viewFinance"
	PermCreateInvoices          Permission = "createInvoices"
	PermManageInvoices          Permission = "manageInvoices"
	PermGenerateReports         Permission = "generateReports"
	PermManagePermissions       Permission = "managePermissions"
	PermViewSecurity            Permission = "viewSecurity"
	PermManageAntiFraudSettings Permission = "manageAntiFraudSettings"
)

// Valid reports whether p is part of the catalog.
func (p Permission) Valid() bool {
	_, ok := catalogIndex[p]
	return ok
}

// ParsePermission validates a raw capability identifier.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(strings.TrimSpace(raw))
	if !p.Valid() {
		return "", fmt.Errorf("rbac: unknown permission %q: %w", raw, shared.ErrValidation)
	}
	return p, nil
}

// Subject describes the acting user as far as access control is concerned.
type Subject struct {
	UserID              string
	Email               string
	Name                string
	Role                Role
	ForcePasswordChange bool
}

// IsRoleLocked reports whether the subject is restricted to the password change action.
func IsRoleLocked(s Subject) bool {
	return s.ForcePasswordChange
}
