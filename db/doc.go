// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens SQL connections and creates the schema.

# Dialects

Two drivers are registered:

  - postgres: github.com/lib/pq
  - sqlite: modernc.org/sqlite (pure Go, no cgo)

Queries are written with ? placeholders; Rebind converts them to $N for
Postgres:

	conn.QueryRow(dialect.Rebind("SELECT 1 FROM poll WHERE id = ?"), id)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, db.Postgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: question and creation time
  - poll_option: option text and running vote_count (never negative)
  - vote: the append-only vote ledger

# Relationships

	poll 1──* poll_option
	poll 1──* vote
	poll_option 1──* vote  (via (option_id, poll_id))

# Fairness Constraints

Two partial unique indexes make the ledger the final authority on
duplicates, whatever the application checked beforehand:

  - uq_vote_poll_ip: (poll_id, voter_ip) where voter_ip <> 'unknown'
  - uq_vote_poll_fingerprint: (poll_id, voter_fingerprint) where
    voter_fingerprint <> 'unknown'
*/
package db
