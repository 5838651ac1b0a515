package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPermissionsRouter(t *testing.T, s Subject) (http.Handler, *Matrix, *auditorStub) {
	t.Helper()
	m, auditor := newTestMatrix(t)
	h := NewPermissionsHandler(nil, m, Middleware{Evaluator: NewEvaluator(m)})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithSubject(req.Context(), s)))
		})
	})
	r.Route("/permissions", h.MountRoutes)
	return r, m, auditor
}

func TestPermissionsHandlerListsMatrix(t *testing.T) {
	router, _, _ := newPermissionsRouter(t, Subject{Email: "admin@femar.org.br", Role: RoleNetworkAdmin})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/permissions/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body matrixView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Roles, len(Roles()))
	assert.Equal(t, RoleNetworkAdmin, body.Roles[0].ID)
	assert.Equal(t, "Administrador de Rede", body.Roles[0].Label)
	assert.Len(t, body.Roles[0].Permissions, 15)
	assert.Len(t, body.Areas, 6)
}

func TestPermissionsHandlerGrantAndSave(t *testing.T) {
	router, m, auditor := newPermissionsRouter(t, Subject{Email: "admin@femar.org.br", Role: RoleNetworkAdmin})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/permissions/auditor/managePermissions", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var result mutationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.True(t, result.Changed)
	assert.True(t, m.Has(RoleAuditor, PermManagePermissions))
	assert.Equal(t, []Role{RoleAuditor}, auditor.escalations)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/permissions/auditor/viewFinance", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/permissions/save", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var saved SaveResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &saved))
	assert.Equal(t, 2, saved.Changes)
}

func TestPermissionsHandlerRejectsUnknownPermission(t *testing.T) {
	router, _, _ := newPermissionsRouter(t, Subject{Email: "admin@femar.org.br", Role: RoleNetworkAdmin})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/permissions/manager/teleport", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPermissionsHandlerRequiresManagePermissions(t *testing.T) {
	router, m, _ := newPermissionsRouter(t, Subject{Email: "gerente@femar.org.br", Role: RoleManager})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/permissions/manager/managePermissions", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, m.Has(RoleManager, PermManagePermissions))
}
