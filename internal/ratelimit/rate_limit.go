/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"context"
	"time"
)

// Default policy used when the caller does not override it.
const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute
)

// Rate describes the frequency of requests.
type Rate struct {
	Count    int
	Duration time.Duration
}

// DefaultRate returns the default policy: 10 requests per minute.
func DefaultRate() Rate {
	return Rate{Count: DefaultLimit, Duration: DefaultWindow}
}

// Decision is the outcome of a single rate limit check.
type Decision struct {
	// Success is true if the request is admitted.
	Success bool
	// Limit is the maximum number of requests inside the window.
	Limit int
	// Remaining is the number of requests that may still be admitted inside the current window.
	Remaining int
	// Reset is the end of the current window in Unix milliseconds.
	Reset int64
	// RetryAfter is set for rejected requests and estimates how long the caller should wait.
	RetryAfter time.Duration
}

// Limiter interface defines the rate limiting contract.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Clock returns the current time. It allows replacing time.Now in tests.
type Clock func() time.Time
