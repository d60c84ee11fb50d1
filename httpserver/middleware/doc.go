/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package middleware contains HTTP middlewares used by the mock API server:
// request ids, logging, panic recovery, Prometheus metrics and per-client rate limiting.
package middleware
