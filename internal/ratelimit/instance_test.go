/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devtoolbox/mockapi/config"
)

func TestNewInstance(t *testing.T) {
	t.Run("sliding log", func(t *testing.T) {
		clock := newFakeClock()
		cfg := NewDefaultConfig()
		cfg.Limit = 2
		cfg.Window = config.TimeDuration(time.Second)
		inst, err := NewInstance(cfg, InstanceOpts{MetricsNamespace: "test_inst", Clock: clock.Now})
		require.NoError(t, err)
		require.NotNil(t, inst.SlidingLog)

		for i := 0; i < 2; i++ {
			d, allowErr := inst.Limiter.Allow(context.Background(), "10.0.0.1")
			require.NoError(t, allowErr)
			require.True(t, d.Success)
		}
		d, err := inst.Limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		require.False(t, d.Success)
		require.Equal(t, time.Second, d.RetryAfter)

		clock.Advance(time.Second)
		require.Equal(t, 1, inst.Sweep())
		require.Equal(t, 0, inst.SlidingLog.Len())
	})

	t.Run("sliding log with max keys", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.MaxKeys = 1
		inst, err := NewInstance(cfg, InstanceOpts{MetricsNamespace: "test_inst_lru"})
		require.NoError(t, err)
		_, _ = inst.Limiter.Allow(context.Background(), "a")
		_, _ = inst.Limiter.Allow(context.Background(), "b")
		require.Equal(t, 1, inst.SlidingLog.Len())

		inst.MustRegisterMetrics()
		inst.UnregisterMetrics()
	})

	t.Run("leaky bucket", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Alg = AlgLeakyBucket
		cfg.Limit = 1
		inst, err := NewInstance(cfg, InstanceOpts{})
		require.NoError(t, err)
		require.Nil(t, inst.SlidingLog)
		require.Equal(t, 0, inst.Sweep())

		d, err := inst.Limiter.Allow(context.Background(), "a")
		require.NoError(t, err)
		require.True(t, d.Success)
		d, err = inst.Limiter.Allow(context.Background(), "a")
		require.NoError(t, err)
		require.False(t, d.Success)
	})

	t.Run("unknown alg", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Alg = "fixed_window"
		_, err := NewInstance(cfg, InstanceOpts{})
		require.EqualError(t, err, `unknown rate limit alg "fixed_window"`)
	})
}
