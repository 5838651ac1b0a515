package rbac

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/femar/gestao/internal/shared"
)

type auditorStub struct {
	escalations []Role
	saves       []int
	err         error
}

func (a *auditorStub) PrivilegeEscalation(_ context.Context, _ string, role Role) error {
	a.escalations = append(a.escalations, role)
	return a.err
}

func (a *auditorStub) MatrixSaved(_ context.Context, _ string, changes int) error {
	a.saves = append(a.saves, changes)
	return a.err
}

func newTestMatrix(t *testing.T) (*Matrix, *auditorStub) {
	t.Helper()
	auditor := &auditorStub{}
	m, err := NewMatrix(DefaultAssignments(), auditor)
	require.NoError(t, err)
	return m, auditor
}

func TestCatalogIsValid(t *testing.T) {
	require.NoError(t, ValidateCatalog())
	assert.Len(t, Catalog(), 15)

	groups := GroupByArea()
	require.NotEmpty(t, groups)
	assert.Equal(t, "Geral", groups[0].Area)
	areas := make([]string, 0, len(groups))
	total := 0
	for _, g := range groups {
		areas = append(areas, g.Area)
		total += len(g.Entries)
	}
	assert.Equal(t, []string{"Geral", "Projetos", "Administrativo", "Financeiro", "Sistema", "Segurança"}, areas)
	assert.Equal(t, 15, total)
}

func TestParseRoleAcceptsLabel(t *testing.T) {
	role, err := ParseRole("Gerente")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	role, err = ParseRole(" Network-Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleNetworkAdmin, role)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestNewMatrixSeedsEveryRole(t *testing.T) {
	m, err := NewMatrix(map[Role][]Permission{RoleAuditor: {PermViewSecurity}}, nil)
	require.NoError(t, err)

	snapshot := m.Snapshot()
	assert.Len(t, snapshot, len(Roles()))
	assert.Empty(t, snapshot[RoleManager])
	assert.Equal(t, []Permission{PermViewSecurity}, snapshot[RoleAuditor])
}

func TestNewMatrixRejectsUnknownEntries(t *testing.T) {
	_, err := NewMatrix(map[Role][]Permission{"root": {PermViewDashboard}}, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewMatrix(map[Role][]Permission{RoleManager: {"fly"}}, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetReturnsCatalogOrder(t *testing.T) {
	m, err := NewMatrix(map[Role][]Permission{
		RoleCollaborator: {PermUploadDocuments, PermViewDashboard, PermViewProjects},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []Permission{PermViewDashboard, PermViewProjects, PermUploadDocuments}, m.Get(RoleCollaborator))
	assert.Empty(t, m.Get("ghost"))
}

func TestGrantIsIdempotent(t *testing.T) {
	m, auditor := newTestMatrix(t)
	ctx := context.Background()

	changed, err := m.Grant(ctx, "admin@femar.org.br", RoleCollaborator, PermViewFinance)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = m.Grant(ctx, "admin@femar.org.br", RoleCollaborator, PermViewFinance)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, m.Has(RoleCollaborator, PermViewFinance))
	assert.Empty(t, auditor.escalations)
}

func TestGrantManagePermissionsRaisesEscalationOnce(t *testing.T) {
	m, auditor := newTestMatrix(t)
	ctx := context.Background()

	_, err := m.Grant(ctx, "admin@femar.org.br", RoleAuditor, PermManagePermissions)
	require.NoError(t, err)
	_, err = m.Grant(ctx, "admin@femar.org.br", RoleAuditor, PermManagePermissions)
	require.NoError(t, err)

	assert.Equal(t, []Role{RoleAuditor}, auditor.escalations)
}

func TestGrantAlreadyHeldManagePermissionsIsSilent(t *testing.T) {
	m, auditor := newTestMatrix(t)

	changed, err := m.Grant(context.Background(), "admin@femar.org.br", RoleNetworkAdmin, PermManagePermissions)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, auditor.escalations)
}

func TestGrantRollsBackWhenEscalationNotRecorded(t *testing.T) {
	m, auditor := newTestMatrix(t)
	auditor.err = errors.New("log unavailable")
	ctx := context.Background()

	changed, err := m.Grant(ctx, "admin@femar.org.br", RoleManager, PermManagePermissions)
	require.Error(t, err)
	assert.False(t, changed)
	assert.False(t, m.Has(RoleManager, PermManagePermissions))
	assert.Equal(t, []Role{RoleManager}, auditor.escalations)

	auditor.err = nil
	res, err := m.Save(ctx, "admin@femar.org.br")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Changes)
}

func TestRevokeAndSaveCountChanges(t *testing.T) {
	m, auditor := newTestMatrix(t)
	ctx := context.Background()

	changed, err := m.Revoke(ctx, "admin@femar.org.br", RoleManager, PermViewSecurity)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = m.Revoke(ctx, "admin@femar.org.br", RoleManager, PermViewSecurity)
	require.NoError(t, err)
	assert.False(t, changed)
	_, err = m.Grant(ctx, "admin@femar.org.br", RoleAuditor, PermViewFinance)
	require.NoError(t, err)

	result, err := m.Save(ctx, "admin@femar.org.br")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Changes)
	assert.False(t, result.SavedAt.IsZero())

	result, err = m.Save(ctx, "admin@femar.org.br")
	require.NoError(t, err)
	assert.Zero(t, result.Changes)
	assert.Equal(t, []int{1, 0}, auditor.saves)
	assert.False(t, m.Has(RoleManager, PermViewSecurity))
}

func TestMutationsRejectUnknownIdentifiers(t *testing.T) {
	m, _ := newTestMatrix(t)
	ctx := context.Background()

	_, err := m.Grant(ctx, "admin@femar.org.br", "root", PermViewDashboard)
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = m.Revoke(ctx, "admin@femar.org.br", RoleManager, "fly")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSnapshotIsACopy(t *testing.T) {
	m, _ := newTestMatrix(t)
	snapshot := m.Snapshot()
	snapshot[RoleAuditor] = append(snapshot[RoleAuditor][:0], PermManagePermissions)

	assert.False(t, m.Has(RoleAuditor, PermManagePermissions))
}

func TestLoadAssignments(t *testing.T) {
	doc := `
roles:
  Gerente: [viewDashboard, viewFinance]
  auditor:
    - viewSecurity
`
	seed, err := LoadAssignments(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermViewDashboard, PermViewFinance}, seed[RoleManager])
	assert.Equal(t, []Permission{PermViewSecurity}, seed[RoleAuditor])

	_, err = LoadAssignments(strings.NewReader("roles:\n  manager: [teleport]\n"))
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = LoadAssignments(strings.NewReader("roles:\n  janitor: [viewDashboard]\n"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}
