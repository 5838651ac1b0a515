package rbac

import "fmt"

// CatalogEntry describes one capability for display and grouping.
type CatalogEntry struct {
	ID    Permission `json:"id"`
	Label string     `json:"label"`
	Area  string     `json:"area"`
}

// AreaGroup is a functional area with its capabilities in catalog order.
type AreaGroup struct {
	Area    string         `json:"area"`
	Entries []CatalogEntry `json:"entries"`
}

var catalog = []CatalogEntry{
	{ID: PermViewDashboard, Label: "Visualizar Dashboard", Area: "Geral"},
	{ID: PermViewProjects, Label: "Visualizar Projetos", Area: "Projetos"},
	{ID: PermCreateProjects, Label: "Criar Novos Projetos", Area: "Projetos"},
	{ID: PermEditProjects, Label: "Editar Projetos", Area: "Projetos"},
	{ID: PermDeleteProjects, Label: "Excluir Projetos", Area: "Projetos"},
	{ID: PermViewAdministrative, Label: "Visualizar Administrativo", Area: "Administrativo"},
	{ID: PermUploadDocuments, Label: "Carregar Documentos", Area: "Administrativo"},
	{ID: PermManageContacts, Label: "Gerenciar Contatos", Area: "Administrativo"},
	{ID: PermViewFinance, Label: "Visualizar Financeiro", Area: "Financeiro"},
	{ID: PermCreateInvoices, Label: "Criar Faturas", Area: "Financeiro"},
	{ID: PermManageInvoices, Label: "Gerenciar Faturas", Area: "Financeiro"},
	{ID: PermGenerateReports, Label: "Gerar Relatórios", Area: "Financeiro"},
	{ID: PermManagePermissions, Label: "Gerenciar Permissões", Area: "Sistema"},
	{ID: PermViewSecurity, Label: "Visualizar Central de Segurança", Area: "Segurança"},
	{ID: PermManageAntiFraudSettings, Label: "Gerenciar Configurações Antifraude", Area: "Segurança"},
}

var catalogIndex = func() map[Permission]int {
	idx := make(map[Permission]int, len(catalog))
	for i, entry := range catalog {
		idx[entry.ID] = i
	}
	return idx
}()

// Catalog returns every capability in declaration order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for p.
func Lookup(p Permission) (CatalogEntry, bool) {
	i, ok := catalogIndex[p]
	if !ok {
		return CatalogEntry{}, false
	}
	return catalog[i], true
}

// GroupByArea groups the catalog by functional area. Areas appear in order of
// their first entry; entries keep declaration order.
func GroupByArea() []AreaGroup {
	var groups []AreaGroup
	pos := make(map[string]int)
	for _, entry := range catalog {
		i, ok := pos[entry.Area]
		if !ok {
			i = len(groups)
			pos[entry.Area] = i
			groups = append(groups, AreaGroup{Area: entry.Area})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}
	return groups
}

// ValidateCatalog checks that every declared capability is listed exactly once
// and carries a label and area. It runs at startup.
func ValidateCatalog() error {
	declared := []Permission{
		PermViewDashboard, PermViewProjects, PermCreateProjects, PermEditProjects, PermDeleteProjects,
		PermViewAdministrative, PermUploadDocuments, PermManageContacts, PermViewFinance,
		PermCreateInvoices, PermManageInvoices, PermGenerateReports, PermManagePermissions,
		PermViewSecurity, PermManageAntiFraudSettings,
	}
	if len(catalogIndex) != len(catalog) {
		return fmt.Errorf("rbac: catalog has duplicate entries")
	}
	for _, p := range declared {
		entry, ok := Lookup(p)
		if !ok {
			return fmt.Errorf("rbac: permission %s missing from catalog", p)
		}
		if entry.Label == "" || entry.Area == "" {
			return fmt.Errorf("rbac: permission %s lacks label or area", p)
		}
	}
	if len(declared) != len(catalog) {
		return fmt.Errorf("rbac: catalog lists %d entries, %d declared", len(catalog), len(declared))
	}
	return nil
}

// sortByCatalog orders permissions by catalog position.
func sortByCatalog(set map[Permission]struct{}) []Permission {
	out := make([]Permission, 0, len(set))
	for _, entry := range catalog {
		if _, ok := set[entry.ID]; ok {
			out = append(out, entry.ID)
		}
	}
	return out
}
