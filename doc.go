// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quick Poll API server.

Quick Poll lets anyone create a single-choice poll and share it. Voting is
anonymous; fairness rests on two weak signals per voter (client address and
a client-side fingerprint), and a vote is refused if either one has already
voted on the poll.

# Starting the Server

	DATABASE_URL=quick-poll.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Settings come from flags, then the environment, then an optional .env file
(see package cliparse):

  - DATABASE_TYPE (-t): memory, sqlite (default) or postgres
  - DATABASE_URL (-d): SQLite path or Postgres URL (not needed for memory)
  - PORT (-p): Server port (default: 3318)
  - RATE_LIMIT_BACKEND (--rate-limit): memory (default) or redis
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: for the redis limiter
  - LOG_LEVEL (--log-level): debug, info, warn or error
  - RECONCILE_ON_START (--reconcile): recompute vote counts at startup

# Architecture

  - handlers: HTTP request handlers (polls, voting)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - voting: Poll validation and vote acceptance rules
  - store: Poll/option store and vote ledger (memory, SQLite, Postgres)
  - ratelimit: Per-address admission (memory or Redis)
  - identity: Voter address and fingerprint resolution
  - ids: Poll, option and vote ids
  - models: Request/response and domain types
  - db: Connections and schema
  - cliparse: Configuration parsing

On SIGINT or SIGTERM the server stops accepting requests, drains in-flight
ones, then closes the limiters and the store.
*/
package main
