/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package lrucache provides a bounded in-memory key/value store with LRU eviction and Prometheus metrics.
// The rate limiter uses it to cap the number of tracked client identities.
package lrucache
