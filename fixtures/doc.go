/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package fixtures loads the static JSON collections served by the mock API.
// Collections are embedded into the binary and may be overridden from a directory.
package fixtures
