/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package ratelimit provides per-identity admission control for incoming requests.
//
// The main algorithm is a sliding log: every identity keeps the timestamps of its admitted
// requests inside the trailing window, and a request is admitted while fewer than limit
// timestamps remain after pruning. State lives in process memory only.
//
// Key features:
//   - Sliding log limiter with an injectable clock
//   - Optional LRU bound on the number of tracked identities
//   - Periodic sweeping of identities with no requests inside their window
//   - Leaky bucket (GCRA) limiter as an alternative algorithm
//   - Common Limiter interface, so the HTTP middleware does not depend on the algorithm
package ratelimit
