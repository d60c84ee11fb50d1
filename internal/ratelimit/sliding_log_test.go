/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SlidingLogTestSuite contains tests for SlidingLog
type SlidingLogTestSuite struct {
	suite.Suite
	clock   *fakeClock
	metrics *PrometheusMetrics
	limiter *SlidingLog
}

func TestSlidingLog(t *testing.T) {
	suite.Run(t, new(SlidingLogTestSuite))
}

func (ts *SlidingLogTestSuite) SetupTest() {
	ts.clock = newFakeClock()
	ts.metrics = NewPrometheusMetrics("test")
	var err error
	ts.limiter, err = NewSlidingLog(SlidingLogOpts{Clock: ts.clock.Now, MetricsCollector: ts.metrics})
	ts.Require().NoError(err)
}

func (ts *SlidingLogTestSuite) TestAdmitsWithinBudget() {
	start := ts.clock.Now().UnixMilli()
	for i := 0; i < DefaultLimit; i++ {
		d := ts.limiter.Check("10.0.0.1", DefaultLimit, DefaultWindow)
		ts.True(d.Success, "request #%d", i+1)
		ts.Equal(DefaultLimit, d.Limit)
		ts.Equal(DefaultLimit-1-i, d.Remaining)
		ts.Equal(start+DefaultWindow.Milliseconds(), d.Reset)
		ts.Zero(d.RetryAfter)
	}

	d := ts.limiter.Check("10.0.0.1", DefaultLimit, DefaultWindow)
	ts.False(d.Success)
	ts.Equal(0, d.Remaining)
	ts.Equal(DefaultWindow, d.RetryAfter)

	ts.Equal(float64(DefaultLimit), testutil.ToFloat64(ts.metrics.DecisionsTotal.WithLabelValues(resultAdmitted)))
	ts.Equal(float64(1), testutil.ToFloat64(ts.metrics.DecisionsTotal.WithLabelValues(resultRejected)))
	ts.Equal(float64(1), testutil.ToFloat64(ts.metrics.IdentitiesAmount))
}

func (ts *SlidingLogTestSuite) TestWindowSlides() {
	const window = time.Minute

	ts.True(ts.limiter.Check("k", 3, window).Success) // t=0
	ts.clock.Advance(20 * time.Second)
	ts.True(ts.limiter.Check("k", 3, window).Success) // t=20s
	ts.clock.Advance(20 * time.Second)
	ts.True(ts.limiter.Check("k", 3, window).Success) // t=40s

	ts.clock.Advance(10 * time.Second) // t=50s
	d := ts.limiter.Check("k", 3, window)
	ts.False(d.Success)
	ts.Equal(10*time.Second, d.RetryAfter)

	// The timestamp equal to windowStart is already outside the window.
	ts.clock.Advance(10 * time.Second) // t=60s
	d = ts.limiter.Check("k", 3, window)
	ts.True(d.Success)
	ts.Equal(0, d.Remaining)

	ts.False(ts.limiter.Check("k", 3, window).Success)

	// Only timestamps inside the trailing window are counted.
	ts.clock.Advance(35 * time.Second) // t=95s, active: 40s, 60s
	d = ts.limiter.Check("k", 3, window)
	ts.True(d.Success)
	ts.Equal(0, d.Remaining)

	ts.clock.Advance(2 * window)
	d = ts.limiter.Check("k", 3, window)
	ts.True(d.Success)
	ts.Equal(2, d.Remaining)
}

func (ts *SlidingLogTestSuite) TestIdentitiesAreIsolated() {
	for i := 0; i < 5; i++ {
		ts.True(ts.limiter.Check("a", 5, time.Minute).Success)
	}
	ts.False(ts.limiter.Check("a", 5, time.Minute).Success)

	d := ts.limiter.Check("b", 5, time.Minute)
	ts.True(d.Success)
	ts.Equal(4, d.Remaining)
	ts.Equal(2, ts.limiter.Len())
}

func (ts *SlidingLogTestSuite) TestRejectedRequestsAreNotRecorded() {
	ts.True(ts.limiter.Check("k", 1, time.Second).Success)
	for i := 0; i < 10; i++ {
		ts.clock.Advance(50 * time.Millisecond)
		ts.False(ts.limiter.Check("k", 1, time.Second).Success)
	}
	ts.clock.Advance(500 * time.Millisecond)
	ts.True(ts.limiter.Check("k", 1, time.Second).Success)
}

func (ts *SlidingLogTestSuite) TestNonPositiveLimit() {
	d := ts.limiter.Check("k", 0, time.Second)
	ts.False(d.Success)
	ts.Equal(0, d.Remaining)
	ts.Equal(time.Second, d.RetryAfter)
}

func (ts *SlidingLogTestSuite) TestSweep() {
	ts.limiter.Check("old", 10, time.Minute)
	ts.limiter.Check("short", 10, time.Second)
	ts.limiter.Check("zero", 0, time.Minute)
	ts.clock.Advance(30 * time.Second)
	ts.limiter.Check("fresh", 10, time.Minute)
	ts.Equal(4, ts.limiter.Len())

	ts.Equal(2, ts.limiter.Sweep()) // "short" and "zero"
	ts.Equal(2, ts.limiter.Len())
	ts.Equal(float64(2), testutil.ToFloat64(ts.metrics.IdentitiesAmount))

	ts.clock.Advance(30 * time.Second)
	ts.Equal(1, ts.limiter.Sweep()) // "old"
	ts.Equal(1, ts.limiter.Len())

	// Sweeping does not change the budget of remaining identities.
	d := ts.limiter.Check("fresh", 10, time.Minute)
	ts.True(d.Success)
	ts.Equal(8, d.Remaining)
}

func (ts *SlidingLogTestSuite) TestWithRate() {
	limiter := ts.limiter.WithRate(Rate{Count: 2, Duration: time.Second})
	ctx := context.Background()
	for _, want := range []bool{true, true, false} {
		d, err := limiter.Allow(ctx, "k")
		ts.NoError(err)
		ts.Equal(want, d.Success)
		ts.Equal(2, d.Limit)
	}
}

func TestSlidingLogMaxKeys(t *testing.T) {
	clock := newFakeClock()
	limiter, err := NewSlidingLog(SlidingLogOpts{Clock: clock.Now, MaxKeys: 2})
	require.NoError(t, err)

	require.True(t, limiter.Check("a", 1, time.Minute).Success)
	require.True(t, limiter.Check("b", 1, time.Minute).Success)
	require.False(t, limiter.Check("a", 1, time.Minute).Success)
	require.True(t, limiter.Check("c", 1, time.Minute).Success) // evicts "b"
	require.Equal(t, 2, limiter.Len())

	require.True(t, limiter.Check("b", 1, time.Minute).Success) // forgotten, so a fresh budget
	require.Equal(t, 2, limiter.Len())

	_, err = NewSlidingLog(SlidingLogOpts{MaxKeys: -1})
	require.Error(t, err)
}

func TestSlidingLogConcurrentChecks(t *testing.T) {
	const limit = 50
	limiter, err := NewSlidingLog(SlidingLogOpts{})
	require.NoError(t, err)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Check("shared", limit, time.Hour).Success {
				admitted.Inc()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(limit), admitted.Load())
}
