package rbac

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DefaultAssignments returns the reference role configuration.
func DefaultAssignments() map[Role][]Permission {
	return map[Role][]Permission{
		RoleNetworkAdmin: {
			PermViewDashboard, PermViewProjects, PermCreateProjects, PermEditProjects, PermDeleteProjects,
			PermViewAdministrative, PermUploadDocuments, PermManageContacts, PermViewFinance,
			PermCreateInvoices, PermManageInvoices, PermGenerateReports, PermManagePermissions,
			PermViewSecurity, PermManageAntiFraudSettings,
		},
		RoleSuperintendent: {
			PermViewDashboard, PermViewProjects, PermCreateProjects, PermEditProjects, PermDeleteProjects,
			PermViewAdministrative, PermUploadDocuments, PermManageContacts, PermViewFinance,
			PermCreateInvoices, PermManageInvoices, PermGenerateReports, PermViewSecurity,
		},
		RoleManager: {
			PermViewDashboard, PermViewProjects, PermCreateProjects, PermEditProjects,
			PermViewAdministrative, PermUploadDocuments, PermManageContacts, PermViewFinance,
			PermCreateInvoices, PermManageInvoices, PermGenerateReports, PermViewSecurity,
		},
		RoleCollaborator: {
			PermViewDashboard, PermViewProjects, PermEditProjects, PermViewAdministrative, PermUploadDocuments,
		},
		RoleAuditor: {
			PermViewDashboard, PermViewProjects, PermViewAdministrative, PermViewFinance, PermViewSecurity,
		},
	}
}

type assignmentsFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadAssignments parses a YAML role seed of the form
//
//	roles:
//	  manager: [viewDashboard, viewFinance]
//
// Role keys accept identifiers or display labels. Unknown identifiers fail.
func LoadAssignments(r io.Reader) (map[Role][]Permission, error) {
	var doc assignmentsFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("rbac: decode assignments: %w", err)
	}
	out := make(map[Role][]Permission, len(doc.Roles))
	for rawRole, rawPerms := range doc.Roles {
		role, err := ParseRole(rawRole)
		if err != nil {
			return nil, err
		}
		perms := make([]Permission, 0, len(rawPerms))
		for _, raw := range rawPerms {
			p, err := ParsePermission(raw)
			if err != nil {
				return nil, err
			}
			perms = append(perms, p)
		}
		out[role] = append(out[role], perms...)
	}
	return out, nil
}
