/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package service runs long-living parts of the application (HTTP server, background workers)
// with a common start/stop lifecycle.
package service

// Unit is a component of the service with its own lifecycle.
type Unit interface {
	// Start runs the unit. It may return right after initialization or block while the unit works.
	// A fatal error is sent to fatalErr, which must not be used after Start returns.
	Start(fatalErr chan<- error)

	// Stop halts the unit. It may be called even if Start failed or was never called.
	Stop(gracefully bool) error
}

// MetricsRegisterer is an interface for objects that can register its own metrics.
type MetricsRegisterer interface {
	MustRegisterMetrics()
	UnregisterMetrics()
}
