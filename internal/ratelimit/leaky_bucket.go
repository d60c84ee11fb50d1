/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
)

// LeakyBucketLimiter implements GCRA (Generic Cell Rate Algorithm). It's a leaky bucket variant algorithm.
// More details and good explanation of this alg is provided here: https://brandur.org/rate-limiting#gcra.
// Unlike SlidingLog it spreads requests evenly over the window instead of admitting a burst of limit requests.
type LeakyBucketLimiter struct {
	limiter *throttled.GCRARateLimiterCtx
	limit   int
	clock   Clock
	metrics MetricsCollector
}

// LeakyBucketOpts represents options for LeakyBucketLimiter.
type LeakyBucketOpts struct {
	// MaxBurst is the number of requests that may exceed the rate at once.
	MaxBurst int
	// MaxKeys limits the number of tracked keys. Zero means no limit.
	MaxKeys int
	// MetricsCollector receives admission statistics. Metrics are disabled if nil.
	MetricsCollector MetricsCollector
	// Clock is used to compute Decision.Reset. time.Now is used by default.
	Clock Clock
}

// NewLeakyBucketLimiter creates a new leaky bucket rate limiter.
func NewLeakyBucketLimiter(maxRate Rate, opts LeakyBucketOpts) (*LeakyBucketLimiter, error) {
	gcraStore, err := memstore.NewCtx(opts.MaxKeys)
	if err != nil {
		return nil, fmt.Errorf("new in-memory store: %w", err)
	}
	reqQuota := throttled.RateQuota{
		MaxRate:  throttled.PerDuration(maxRate.Count, maxRate.Duration),
		MaxBurst: opts.MaxBurst,
	}
	gcraLimiter, err := throttled.NewGCRARateLimiterCtx(gcraStore, reqQuota)
	if err != nil {
		return nil, fmt.Errorf("new GCRA rate limiter: %w", err)
	}
	metrics := opts.MetricsCollector
	if metrics == nil {
		metrics = disabledMetrics{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LeakyBucketLimiter{limiter: gcraLimiter, limit: maxRate.Count, clock: clock, metrics: metrics}, nil
}

// Allow checks if the request should be allowed based on the rate limit.
// Decision.Limit is the configured request count per window, not the GCRA burst size.
func (l *LeakyBucketLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	limited, res, err := l.limiter.RateLimitCtx(ctx, key, 1)
	if err != nil {
		return Decision{}, err
	}
	l.metrics.IncDecisions(!limited)
	d := Decision{
		Success:   !limited,
		Limit:     l.limit,
		Remaining: max(0, min(res.Remaining, l.limit)),
		Reset:     l.clock().Add(res.ResetAfter).UnixMilli(),
	}
	if limited {
		d.RetryAfter = max(0, res.RetryAfter)
	}
	return d, nil
}
