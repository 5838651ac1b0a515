package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/femar/gestao/internal/security"
)

// SecurityMetrics counts security log transitions. It implements
// security.Observer.
type SecurityMetrics struct {
	appended   *prometheus.CounterVec
	authorized prometheus.Counter
	rejected   *prometheus.CounterVec
	pending    prometheus.Gauge
}

// NewSecurityMetrics registers the security collectors on registerer.
func NewSecurityMetrics(registerer prometheus.Registerer) *SecurityMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &SecurityMetrics{
		appended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gestao_security_events_total",
			Help: "Security events appended to the log by risk level.",
		}, []string{"risk"}),
		authorized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gestao_security_authorizations_total",
			Help: "High-risk events authorized.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gestao_security_authorization_rejections_total",
			Help: "Authorization attempts refused by reason.",
		}, []string{"reason"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gestao_security_pending_authorizations",
			Help: "High-risk events waiting for authorization.",
		}),
	}
	registerer.MustRegister(m.appended, m.authorized, m.rejected, m.pending)
	return m
}

// EventAppended implements security.Observer.
func (m *SecurityMetrics) EventAppended(e security.Event) {
	if m == nil {
		return
	}
	m.appended.WithLabelValues(string(e.Risk)).Inc()
	if e.Pending() {
		m.pending.Inc()
	}
}

// EventAuthorized implements security.Observer.
func (m *SecurityMetrics) EventAuthorized(security.Event) {
	if m == nil {
		return
	}
	m.authorized.Inc()
	m.pending.Dec()
}

// AuthorizationRejected implements security.Observer.
func (m *SecurityMetrics) AuthorizationRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
