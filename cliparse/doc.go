// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p            Server port
	-d            Database URL or SQLite file
	-t            Database type (memory, sqlite, postgres)
	--rate-limit  Rate limiter backend (memory, redis)
	--redis-addr  Redis host:port
	--redis-db    Redis database number
	--log-level   debug, info, warn, error
	--reconcile   Recompute vote counts at startup
	--env         Env file (default .env)

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	RATE_LIMIT_BACKEND → --rate-limit
	REDIS_ADDR         → --redis-addr
	REDIS_PASSWORD     (env only)
	REDIS_DB           → --redis-db
	LOG_LEVEL          → --log-level
	RECONCILE_ON_START → --reconcile

The env file is loaded with github.com/joho/godotenv before the fallbacks
are read. It never overrides a variable that is already set, and a missing
file is ignored.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing for sqlite or postgres
  - REDIS_ADDR is missing for the redis limiter
  - a type, level or number does not parse
*/
package cliparse
