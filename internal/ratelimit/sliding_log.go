/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devtoolbox/mockapi/lrucache"
)

// SlidingLogOpts represents options for SlidingLog.
type SlidingLogOpts struct {
	// Clock is used to get the current time. time.Now is used by default.
	Clock Clock

	// MaxKeys limits the number of tracked identities. When the limit is reached,
	// the least recently checked identity is forgotten. Zero means no limit.
	MaxKeys int

	// MetricsCollector receives admission statistics. Metrics are disabled if nil.
	MetricsCollector MetricsCollector

	// CacheMetricsCollector receives statistics of the identity cache. Used only when MaxKeys > 0.
	CacheMetricsCollector lrucache.MetricsCollector
}

// SlidingLog keeps, for every identity, the timestamps of admitted requests inside the trailing window.
// A request is admitted while the number of timestamps newer than now-window is less than the limit.
// It is safe for concurrent use.
type SlidingLog struct {
	clock   Clock
	metrics MetricsCollector

	mu      sync.Mutex // guards the load-prune-decide-store sequence
	entries identityStore
}

// NewSlidingLog creates a new SlidingLog.
func NewSlidingLog(opts SlidingLogOpts) (*SlidingLog, error) {
	if opts.MaxKeys < 0 {
		return nil, fmt.Errorf("max keys must be greater than or equal to 0")
	}
	l := &SlidingLog{clock: opts.Clock, metrics: opts.MetricsCollector}
	if l.clock == nil {
		l.clock = time.Now
	}
	if l.metrics == nil {
		l.metrics = disabledMetrics{}
	}
	if opts.MaxKeys == 0 {
		l.entries = newMapStore()
		return l, nil
	}
	lruStore, err := newLRUStore(opts.MaxKeys, opts.CacheMetricsCollector)
	if err != nil {
		return nil, err
	}
	l.entries = lruStore
	return l, nil
}

// Check registers a request of the identity and decides whether it is admitted
// with at most limit requests inside the trailing window.
func (l *SlidingLog) Check(identity string, limit int, window time.Duration) Decision {
	now := l.clock().UnixMilli()
	windowMs := window.Milliseconds()
	windowStart := now - windowMs

	l.mu.Lock()
	prev, _ := l.entries.load(identity)
	timestamps := make([]int64, 0, len(prev.timestamps)+1)
	for _, ts := range prev.timestamps {
		if ts > windowStart {
			timestamps = append(timestamps, ts)
		}
	}
	success := len(timestamps) < limit
	if success {
		timestamps = append(timestamps, now)
	}
	l.entries.store(identity, logEntry{timestamps: timestamps, window: windowMs})
	identities := l.entries.len()
	l.mu.Unlock()

	l.metrics.IncDecisions(success)
	l.metrics.SetIdentities(identities)

	d := Decision{
		Success:   success,
		Limit:     limit,
		Remaining: max(0, limit-len(timestamps)),
		Reset:     now + windowMs,
	}
	if !success {
		d.RetryAfter = retryAfter(timestamps, now, windowMs)
	}
	return d
}

// retryAfter returns the time until the oldest timestamp leaves the window.
func retryAfter(timestamps []int64, now, windowMs int64) time.Duration {
	if len(timestamps) == 0 {
		return time.Duration(windowMs) * time.Millisecond
	}
	oldest := timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts < oldest {
			oldest = ts
		}
	}
	return time.Duration(max(0, oldest+windowMs-now)) * time.Millisecond
}

// Sweep forgets identities that have no timestamps inside the window used by their last check.
// It returns the number of forgotten identities. Sweeping never changes admission results.
func (l *SlidingLog) Sweep() int {
	now := l.clock().UnixMilli()

	l.mu.Lock()
	removed := l.entries.removeIf(func(_ string, e logEntry) bool {
		return len(e.timestamps) == 0 || e.newest() <= now-e.window
	})
	identities := l.entries.len()
	l.mu.Unlock()

	l.metrics.SetIdentities(identities)
	return removed
}

// Len returns the number of tracked identities.
func (l *SlidingLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries.len()
}

// WithRate returns a Limiter that checks every key against the given rate.
func (l *SlidingLog) WithRate(rate Rate) Limiter {
	return &slidingLogLimiter{log: l, rate: rate}
}

type slidingLogLimiter struct {
	log  *SlidingLog
	rate Rate
}

// Allow implements Limiter. It never returns an error.
func (sl *slidingLogLimiter) Allow(_ context.Context, key string) (Decision, error) {
	return sl.log.Check(key, sl.rate.Count, sl.rate.Duration), nil
}
