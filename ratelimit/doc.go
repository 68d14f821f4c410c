// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit provides the per-address admission gates in front of poll
creation and vote submission.

# Policies

Two policies are used by the router:

  - CreatePolicy: 5 polls per 60s per address
  - VotePolicy: 5 vote attempts per 10s per address

Each window starts at the first attempt for a key. The first attempt is
always admitted; later attempts are rejected once the count exceeds Max.
A request arriving after the window has ended starts a fresh window
regardless of the previous count.

# Backends

Memory keeps counters in a mutex-guarded map. The read-check-write for a
key is one critical section, so two concurrent requests cannot both take
the last slot. A sweeper goroutine drops ended windows; stop it with Close:

	limiter := ratelimit.NewMemory(ratelimit.VotePolicy)
	defer limiter.Close()

Redis shares counters between processes using an INCR/PEXPIRE Lua script:

	limiter, err := ratelimit.NewRedis(ctx, client, "qp:vote:", ratelimit.VotePolicy)

Neither backend is a security boundary. Callers fail open when Allow
returns an error.
*/
package ratelimit
