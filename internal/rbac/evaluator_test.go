package rbac

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatorHasAny(t *testing.T) {
	m, _ := newTestMatrix(t)
	e := NewEvaluator(m)

	assert.True(t, e.HasPermission(RoleAuditor, PermViewSecurity))
	assert.False(t, e.HasPermission(RoleAuditor, PermCreateInvoices))
	assert.True(t, e.HasAny(RoleCollaborator, PermViewFinance, PermUploadDocuments))
	assert.False(t, e.HasAny(RoleCollaborator, PermViewFinance, PermViewSecurity))
	assert.True(t, e.HasAny(RoleCollaborator))
	assert.Equal(t, []Permission{PermViewFinance, PermViewSecurity},
		e.Granted(RoleAuditor, []Permission{PermCreateInvoices, PermViewFinance, PermViewSecurity}))
}

func TestNilEvaluatorDeniesEverything(t *testing.T) {
	var e *Evaluator
	assert.False(t, e.HasPermission(RoleNetworkAdmin, PermViewDashboard))
}

func TestEvaluatorSeesLiveChanges(t *testing.T) {
	m, _ := newTestMatrix(t)
	e := NewEvaluator(m)

	_, err := m.Revoke(t.Context(), "admin@femar.org.br", RoleManager, PermViewFinance)
	require.NoError(t, err)
	assert.False(t, e.HasPermission(RoleManager, PermViewFinance))
}

func TestVisibleNavItems(t *testing.T) {
	m, _ := newTestMatrix(t)
	e := NewEvaluator(m)

	items := e.VisibleNavItems(Subject{Role: RoleCollaborator}, DefaultNav())
	views := make([]View, 0, len(items))
	for _, item := range items {
		views = append(views, item.View)
		assert.False(t, item.Disabled)
	}
	assert.Equal(t, []View{ViewDashboard, ViewProjects, ViewAdministrative, ViewProfile}, views)
}

func TestVisibleNavItemsLockedSubject(t *testing.T) {
	m, _ := newTestMatrix(t)
	e := NewEvaluator(m)

	items := e.VisibleNavItems(Subject{Role: RoleManager, ForcePasswordChange: true}, DefaultNav())
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.Equal(t, item.View != ViewProfile, item.Disabled, "view %s", item.View)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func serveAs(h http.Handler, s *Subject) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if s != nil {
		req = req.WithContext(WithSubject(req.Context(), *s))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestMiddleware(t *testing.T) {
	m, _ := newTestMatrix(t)
	mw := Middleware{Evaluator: NewEvaluator(m), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	manager := &Subject{Email: "gerente@femar.org.br", Role: RoleManager}
	locked := &Subject{Email: "ana.silva@femar.org.br", Role: RoleCollaborator, ForcePasswordChange: true}
	collaborator := &Subject{Email: "colab@femar.org.br", Role: RoleCollaborator}

	assert.Equal(t, http.StatusUnauthorized, serveAs(mw.RequireSubject(okHandler()), nil))
	assert.Equal(t, http.StatusNoContent, serveAs(mw.RequireSubject(okHandler()), locked))

	assert.Equal(t, http.StatusLocked, serveAs(mw.RequireUnlocked(okHandler()), locked))
	assert.Equal(t, http.StatusNoContent, serveAs(mw.RequireUnlocked(okHandler()), manager))

	guard := mw.RequireAny(PermViewSecurity)
	assert.Equal(t, http.StatusNoContent, serveAs(guard(okHandler()), manager))
	assert.Equal(t, http.StatusForbidden, serveAs(guard(okHandler()), collaborator))
	assert.Equal(t, http.StatusUnauthorized, serveAs(guard(okHandler()), nil))
}
