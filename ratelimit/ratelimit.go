// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"time"
)

// Policy bounds admissions per key within one window
type Policy struct {
	Window time.Duration
	Max    int
}

var (
	// CreatePolicy gates poll creation
	CreatePolicy = Policy{Window: 60 * time.Second, Max: 5}
	// VotePolicy gates vote submission
	VotePolicy = Policy{Window: 10 * time.Second, Max: 5}
)

// Limiter is a per-key admission gate
type Limiter interface {
	// Allow records one attempt for key and reports whether it is admitted
	Allow(ctx context.Context, key string) (bool, error)

	// Close releases background resources
	Close() error
}
