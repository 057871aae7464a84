package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginsTotal      prometheus.Counter
	AuthFailures     prometheus.Counter
	TokensIssued     prometheus.Counter
	UsersProvisioned prometheus.Counter
	PinVerifyLatency prometheus.Histogram
	EndpointLatency  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LoginsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinauth_logins_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinauth_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinauth_tokens_issued_total",
			Help: "Total number of session tokens issued",
		}),
		UsersProvisioned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinauth_users_provisioned_total",
			Help: "Total number of users provisioned",
		}),
		// Bcrypt verification dominates request cost; watch it separately.
		PinVerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinauth_pin_verify_latency_seconds",
			Help:    "Latency of PIN hash verification in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinauth_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// ObservePinVerify records a single hash verification duration.
func (m *Metrics) ObservePinVerify(d time.Duration) {
	if m == nil {
		return
	}
	m.PinVerifyLatency.Observe(d.Seconds())
}
