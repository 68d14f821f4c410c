// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Fixed window counter: the first hit creates the key and arms its expiry,
// so the window resets when the key disappears
const admitScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`

// Redis shares limiter state between processes
type Redis struct {
	client *redis.Client
	prefix string
	policy Policy
	script *redis.Script
}

// NewRedis creates a limiter storing counters under prefix.
// The script is preloaded so the hot path is a single EVALSHA.
func NewRedis(ctx context.Context, client *redis.Client, prefix string, p Policy) (*Redis, error) {
	script := redis.NewScript(admitScript)
	if err := script.Load(ctx, client).Err(); err != nil {
		return nil, fmt.Errorf("failed to load rate limit script: %w", err)
	}

	return &Redis{
		client: client,
		prefix: prefix,
		policy: p,
		script: script,
	}, nil
}

// Allow increments the counter for key atomically on the server
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	// Run falls back to EVAL when the server answers NOSCRIPT (e.g. after a restart)
	count, err := r.script.Run(ctx, r.client, []string{r.prefix + key}, r.policy.Window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	return count <= int64(r.policy.Max), nil
}

// Close is a no-op; the client is owned by the caller
func (r *Redis) Close() error {
	return nil
}
