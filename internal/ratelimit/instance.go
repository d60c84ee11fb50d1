/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"fmt"

	"github.com/devtoolbox/mockapi/lrucache"
)

// Instance is a limiter built from the Config together with its metrics.
type Instance struct {
	Limiter Limiter
	// SlidingLog is nil when another algorithm is used.
	SlidingLog *SlidingLog

	metrics      *PrometheusMetrics
	cacheMetrics *lrucache.PrometheusMetrics
}

// InstanceOpts represents options for NewInstance.
type InstanceOpts struct {
	MetricsNamespace string
	Clock            Clock
}

// NewInstance creates a limiter of the configured algorithm.
func NewInstance(cfg *Config, opts InstanceOpts) (*Instance, error) {
	inst := &Instance{metrics: NewPrometheusMetrics(opts.MetricsNamespace)}
	switch cfg.Alg {
	case AlgSlidingLog, "":
		if cfg.MaxKeys > 0 {
			inst.cacheMetrics = lrucache.NewPrometheusMetrics(opts.MetricsNamespace, "rate_limit_identities")
		}
		slOpts := SlidingLogOpts{Clock: opts.Clock, MaxKeys: cfg.MaxKeys, MetricsCollector: inst.metrics}
		if inst.cacheMetrics != nil {
			slOpts.CacheMetricsCollector = inst.cacheMetrics
		}
		sl, err := NewSlidingLog(slOpts)
		if err != nil {
			return nil, fmt.Errorf("new sliding log: %w", err)
		}
		inst.SlidingLog = sl
		inst.Limiter = sl.WithRate(cfg.Rate())
	case AlgLeakyBucket:
		lb, err := NewLeakyBucketLimiter(cfg.Rate(), LeakyBucketOpts{
			MaxBurst: cfg.MaxBurst, MaxKeys: cfg.MaxKeys, MetricsCollector: inst.metrics, Clock: opts.Clock,
		})
		if err != nil {
			return nil, err
		}
		inst.Limiter = lb
	default:
		return nil, fmt.Errorf("unknown rate limit alg %q", cfg.Alg)
	}
	return inst, nil
}

// Sweep removes expired identities. Algorithms other than sliding log expire keys by themselves.
func (inst *Instance) Sweep() int {
	if inst.SlidingLog == nil {
		return 0
	}
	return inst.SlidingLog.Sweep()
}

// MustRegisterMetrics registers limiter metrics in the default Prometheus registry.
func (inst *Instance) MustRegisterMetrics() {
	inst.metrics.MustRegister()
	if inst.cacheMetrics != nil {
		inst.cacheMetrics.MustRegister()
	}
}

// UnregisterMetrics unregisters limiter metrics.
func (inst *Instance) UnregisterMetrics() {
	inst.metrics.Unregister()
	if inst.cacheMetrics != nil {
		inst.cacheMetrics.Unregister()
	}
}
