package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Authentications *prometheus.CounterVec
	CodesIssued     *prometheus.CounterVec
	ResolverCalls   *prometheus.CounterVec
	ResolverLatency prometheus.Histogram
	AuditDropped    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Authentications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voteauth_authentications_total",
			Help: "Authentication attempts partitioned by outcome reason",
		}, []string{"result"}),
		CodesIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voteauth_codes_issued_total",
			Help: "Single-use codes issued partitioned by voter kind",
		}, []string{"kind"}),
		ResolverCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voteauth_resolver_requests_total",
			Help: "Card resolver requests partitioned by outcome",
		}, []string{"outcome"}),
		ResolverLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "voteauth_resolver_latency_seconds",
			Help:    "Card resolver request latency",
			Buckets: prometheus.DefBuckets,
		}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "voteauth_audit_events_dropped_total",
			Help: "Audit events dropped because the publisher buffer was full",
		}),
	}
}

// ObserveAuthentication records one authentication attempt outcome.
// Successful attempts use the result "success".
func (m *Metrics) ObserveAuthentication(result string) {
	m.Authentications.WithLabelValues(result).Inc()
}

// ObserveCodeIssued records an issued code for the given voter kind.
func (m *Metrics) ObserveCodeIssued(kind string) {
	m.CodesIssued.WithLabelValues(kind).Inc()
}

// ObserveResolverCall records a resolver round trip.
func (m *Metrics) ObserveResolverCall(outcome string, elapsed time.Duration) {
	m.ResolverCalls.WithLabelValues(outcome).Inc()
	m.ResolverLatency.Observe(elapsed.Seconds())
}
