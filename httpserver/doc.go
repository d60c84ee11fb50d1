/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package httpserver provides the HTTP server unit that serves fixture collections.
// Besides the resource routes under /api it exposes /healthz and /metrics and
// applies request id, logging, recovery, metrics and rate limiting middlewares.
package httpserver
