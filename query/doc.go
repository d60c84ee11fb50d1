/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package query implements pagination, filtering and sorting of schema-less JSON collections
// driven by raw query-string parameters.
//
// Malformed input never produces an error: invalid pagination values fall back to defaults,
// and filters that cannot be applied simply exclude records.
package query
