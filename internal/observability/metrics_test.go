package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/femar/gestao/internal/security"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gestao_http_requests_total{code="418",route="/test"} 1`)
	assert.Contains(t, body, `gestao_http_request_duration_seconds_bucket{route="/test"`)
}

func TestSecurityMetricsTrackPendingAuthorizations(t *testing.T) {
	metrics := NewMetrics()
	sec := NewSecurityMetrics(metrics.Registerer())
	log := security.NewLog(security.WithObserver(sec))
	ctx := context.Background()

	_, err := log.Append(ctx, security.NewEvent{User: "a@femar.org.br", Action: "Login", Risk: security.RiskLow})
	require.NoError(t, err)
	high, err := log.Append(ctx, security.NewEvent{User: "a@femar.org.br", Action: "Upload", Risk: security.RiskHigh})
	require.NoError(t, err)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gestao_security_events_total{risk="low"} 1`)
	assert.Contains(t, body, `gestao_security_events_total{risk="high"} 1`)
	assert.Contains(t, body, "gestao_security_pending_authorizations 1")

	_, err = log.Authorize(ctx, high.ID, "admin@femar.org.br", "Valor conferido")
	require.NoError(t, err)

	body = scrape(t, metrics)
	assert.Contains(t, body, "gestao_security_pending_authorizations 0")
	assert.Contains(t, body, "gestao_security_authorizations_total 1")
}

func TestNilMetricsHandlerUnavailable(t *testing.T) {
	var m *Metrics
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
