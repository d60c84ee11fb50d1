/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package lrucache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New[string, int](0, nil)
	require.Error(t, err)

	cache, err := New[string, int](1, nil)
	require.NoError(t, err)
	require.Equal(t, 0, cache.Len())
}

func TestLRUCache(t *testing.T) {
	tests := []struct {
		name          string
		maxEntries    int
		fn            func(t *testing.T, cache *LRUCache[string, int])
		wantAmount    int
		wantHits      int
		wantMisses    int
		wantEvictions int
	}{
		{
			name:       "get not existing key",
			maxEntries: 10,
			fn: func(t *testing.T, cache *LRUCache[string, int]) {
				_, ok := cache.Get("10.0.0.1")
				require.False(t, ok)
			},
			wantMisses: 1,
		},
		{
			name:       "add and get",
			maxEntries: 10,
			fn: func(t *testing.T, cache *LRUCache[string, int]) {
				cache.Add("10.0.0.1", 1)
				cache.Add("10.0.0.2", 2)
				cache.Add("10.0.0.1", 3)
				v, ok := cache.Get("10.0.0.1")
				require.True(t, ok)
				require.Equal(t, 3, v)
				require.Equal(t, 2, cache.Len())
			},
			wantAmount: 2,
			wantHits:   1,
		},
		{
			name:       "least recently used entry is evicted",
			maxEntries: 2,
			fn: func(t *testing.T, cache *LRUCache[string, int]) {
				cache.Add("a", 1)
				cache.Add("b", 2)
				_, _ = cache.Get("a")
				cache.Add("c", 3)
				_, ok := cache.Get("b")
				require.False(t, ok)
				_, ok = cache.Get("a")
				require.True(t, ok)
				_, ok = cache.Get("c")
				require.True(t, ok)
			},
			wantAmount:    2,
			wantHits:      3,
			wantMisses:    1,
			wantEvictions: 1,
		},
		{
			name:       "remove and purge",
			maxEntries: 10,
			fn: func(t *testing.T, cache *LRUCache[string, int]) {
				cache.Add("a", 1)
				cache.Add("b", 2)
				require.True(t, cache.Remove("a"))
				require.False(t, cache.Remove("a"))
				require.Equal(t, 1, cache.Len())
				cache.Purge()
				require.Equal(t, 0, cache.Len())
			},
		},
		{
			name:       "remove by predicate",
			maxEntries: 10,
			fn: func(t *testing.T, cache *LRUCache[string, int]) {
				for i, k := range []string{"a", "b", "c", "d"} {
					cache.Add(k, i)
				}
				removed := cache.RemoveIf(func(_ string, v int) bool { return v%2 == 0 })
				require.Equal(t, 2, removed)
				_, ok := cache.Get("b")
				require.True(t, ok)
				_, ok = cache.Get("d")
				require.True(t, ok)
			},
			wantAmount: 2,
			wantHits:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := NewPrometheusMetrics("test", "")
			cache, err := New[string, int](tt.maxEntries, metrics)
			require.NoError(t, err)
			tt.fn(t, cache)
			require.Equal(t, tt.wantAmount, int(testutil.ToFloat64(metrics.EntriesAmount)))
			require.Equal(t, tt.wantHits, int(testutil.ToFloat64(metrics.HitsTotal)))
			require.Equal(t, tt.wantMisses, int(testutil.ToFloat64(metrics.MissesTotal)))
			require.Equal(t, tt.wantEvictions, int(testutil.ToFloat64(metrics.EvictionsTotal)))
		})
	}
}

func TestLRUCacheOnEvict(t *testing.T) {
	var evicted []string
	cache, err := NewWithOpts[string, int](1, nil, Options[string, int]{
		OnEvict: func(key string, _ int) { evicted = append(evicted, key) },
	})
	require.NoError(t, err)
	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Remove("b")
	require.Equal(t, []string{"a"}, evicted)
}
