/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector receives admission statistics of a limiter.
type MetricsCollector interface {
	IncDecisions(admitted bool)
	SetIdentities(n int)
}

// Values of the "result" label.
const (
	resultAdmitted = "admitted"
	resultRejected = "rejected"
)

// PrometheusMetrics is a MetricsCollector backed by Prometheus collectors.
type PrometheusMetrics struct {
	DecisionsTotal   *prometheus.CounterVec
	IdentitiesAmount prometheus.Gauge
}

// NewPrometheusMetrics creates PrometheusMetrics with the given namespace.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	return &PrometheusMetrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_decisions_total",
			Help:      "Number of rate limit decisions by result.",
		}, []string{"result"}),
		IdentitiesAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_limit_identities_amount",
			Help:      "Number of identities tracked by the rate limiter.",
		}),
	}
}

// IncDecisions implements MetricsCollector.
func (pm *PrometheusMetrics) IncDecisions(admitted bool) {
	result := resultRejected
	if admitted {
		result = resultAdmitted
	}
	pm.DecisionsTotal.WithLabelValues(result).Inc()
}

// SetIdentities implements MetricsCollector.
func (pm *PrometheusMetrics) SetIdentities(n int) {
	pm.IdentitiesAmount.Set(float64(n))
}

// MustRegister registers the collectors in the default Prometheus registry and panics on error.
func (pm *PrometheusMetrics) MustRegister() {
	prometheus.MustRegister(pm.DecisionsTotal, pm.IdentitiesAmount)
}

// Unregister removes the collectors from the default Prometheus registry.
func (pm *PrometheusMetrics) Unregister() {
	prometheus.Unregister(pm.DecisionsTotal)
	prometheus.Unregister(pm.IdentitiesAmount)
}

type disabledMetrics struct{}

func (disabledMetrics) IncDecisions(bool) {}
func (disabledMetrics) SetIdentities(int) {}
