package rbac

// View identifies a navigable area of the console.
type View string

// Console views.
const (
	ViewDashboard      View = "dashboard"
	ViewProjects       View = "projects"
	ViewAdministrative View = "administrative"
	ViewFinance        View = "finance"
	ViewPermissions    View = "permissions"
	ViewSecurity       View = "security"
	ViewProfile        View = "profile"
)

// NavItem is a sidebar entry. Requires is empty for items every user sees.
type NavItem struct {
	View     View       `json:"view"`
	Label    string     `json:"label"`
	Requires Permission `json:"requires,omitempty"`
	Disabled bool       `json:"disabled"`
}

// DefaultNav returns the sidebar candidates in display order.
func DefaultNav() []NavItem {
	return []NavItem{
		{View: ViewDashboard, Label: "Dashboard", Requires: PermViewDashboard},
		{View: ViewProjects, Label: "Projetos", Requires: PermViewProjects},
		{View: ViewAdministrative, Label: "Administrativo", Requires: PermViewAdministrative},
		{View: ViewFinance, Label: "Financeiro", Requires: PermViewFinance},
		{View: ViewPermissions, Label: "Permissões", Requires: PermManagePermissions},
		{View: ViewSecurity, Label: "Segurança", Requires: PermViewSecurity},
		{View: ViewProfile, Label: "Meu Perfil"},
	}
}

// Evaluator answers access questions against the live matrix.
type Evaluator struct {
	matrix *Matrix
}

// NewEvaluator builds an Evaluator over matrix.
func NewEvaluator(matrix *Matrix) *Evaluator {
	return &Evaluator{matrix: matrix}
}

// HasPermission reports whether role holds p.
func (e *Evaluator) HasPermission(role Role, p Permission) bool {
	if e == nil || e.matrix == nil {
		return false
	}
	return e.matrix.Has(role, p)
}

// HasAny reports whether role holds at least one of perms. An empty list passes.
func (e *Evaluator) HasAny(role Role, perms ...Permission) bool {
	if len(perms) == 0 {
		return true
	}
	for _, p := range perms {
		if e.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// Granted filters candidates down to those held by role, keeping order.
func (e *Evaluator) Granted(role Role, candidates []Permission) []Permission {
	out := make([]Permission, 0, len(candidates))
	for _, p := range candidates {
		if e.HasPermission(role, p) {
			out = append(out, p)
		}
	}
	return out
}

// VisibleNavItems keeps the candidates whose requirement the subject's role
// holds, in candidate order. For a locked subject every item other than the
// profile is returned disabled.
func (e *Evaluator) VisibleNavItems(s Subject, candidates []NavItem) []NavItem {
	locked := IsRoleLocked(s)
	out := make([]NavItem, 0, len(candidates))
	for _, item := range candidates {
		if item.Requires != "" && !e.HasPermission(s.Role, item.Requires) {
			continue
		}
		item.Disabled = locked && item.View != ViewProfile
		out = append(out, item)
	}
	return out
}
