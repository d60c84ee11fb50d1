/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"fmt"

	"github.com/devtoolbox/mockapi/lrucache"
)

// logEntry is the state of one identity. It is replaced as a whole on every check.
type logEntry struct {
	timestamps []int64 // Unix ms, in order of admission
	window     int64   // ms, window of the last check
}

func (e logEntry) newest() int64 {
	var newest int64
	for _, ts := range e.timestamps {
		if ts > newest {
			newest = ts
		}
	}
	return newest
}

// identityStore is not safe for concurrent use, SlidingLog serializes access to it.
type identityStore interface {
	load(identity string) (logEntry, bool)
	store(identity string, e logEntry)
	removeIf(pred func(identity string, e logEntry) bool) int
	len() int
}

type mapStore struct {
	m map[string]logEntry
}

func newMapStore() *mapStore {
	return &mapStore{m: make(map[string]logEntry)}
}

func (s *mapStore) load(identity string) (logEntry, bool) {
	e, ok := s.m[identity]
	return e, ok
}

func (s *mapStore) store(identity string, e logEntry) {
	s.m[identity] = e
}

func (s *mapStore) removeIf(pred func(identity string, e logEntry) bool) int {
	removed := 0
	for identity, e := range s.m {
		if pred(identity, e) {
			delete(s.m, identity)
			removed++
		}
	}
	return removed
}

func (s *mapStore) len() int {
	return len(s.m)
}

type lruStore struct {
	cache *lrucache.LRUCache[string, logEntry]
}

func newLRUStore(maxKeys int, metricsCollector lrucache.MetricsCollector) (*lruStore, error) {
	cache, err := lrucache.New[string, logEntry](maxKeys, metricsCollector)
	if err != nil {
		return nil, fmt.Errorf("new LRU cache for identities: %w", err)
	}
	return &lruStore{cache: cache}, nil
}

func (s *lruStore) load(identity string) (logEntry, bool) {
	return s.cache.Get(identity)
}

func (s *lruStore) store(identity string, e logEntry) {
	s.cache.Add(identity, e)
}

func (s *lruStore) removeIf(pred func(identity string, e logEntry) bool) int {
	return s.cache.RemoveIf(pred)
}

func (s *lruStore) len() int {
	return s.cache.Len()
}
