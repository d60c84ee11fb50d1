/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package restapi

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "restapi"

var (
	metricsMu             sync.RWMutex
	metricsResponseErrors *prometheus.CounterVec
)

// MustInitAndRegisterMetrics registers the <namespace>_restapi_response_errors counter
// in the default registry. It panics if the counter is already registered.
// Errors are counted only while the counter is registered.
func MustInitAndRegisterMetrics(namespace string) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: metricsSubsystem,
		Name:      "response_errors",
		Help:      "Number of error responses (404, 405, 429, 500, ...) by error domain, code and HTTP status.",
	}, []string{"domain", "code", "status"})
	prometheus.MustRegister(counter)

	metricsMu.Lock()
	metricsResponseErrors = counter
	metricsMu.Unlock()
}

// UnregisterMetrics removes the counter registered by MustInitAndRegisterMetrics.
func UnregisterMetrics() {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if metricsResponseErrors != nil {
		prometheus.Unregister(metricsResponseErrors)
		metricsResponseErrors = nil
	}
}

func countResponseError(err *Error, httpStatusCode int) {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	if metricsResponseErrors != nil {
		metricsResponseErrors.WithLabelValues(err.Domain, err.Code, strconv.Itoa(httpStatusCode)).Inc()
	}
}
