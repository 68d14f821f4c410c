// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a supported SQL backend
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configuration value to a Dialect
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(s)) {
	case Postgres:
		return Postgres, nil
	case SQLite:
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database type %q", s)
}

// Open connects and verifies the connection.
// SQLite is limited to one connection: writers are serialized in-process
// instead of failing with SQLITE_BUSY.
func Open(d Dialect, url string) (*sql.DB, error) {
	if d == SQLite {
		url = sqliteDSN(url)
	}

	conn, err := sql.Open(string(d), url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d == SQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}

// sqliteDSN turns on foreign keys for every connection the pool opens.
// SQLite keeps the setting per connection, so it goes in the DSN.
func sqliteDSN(url string) string {
	if strings.Contains(url, "foreign_keys") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)"
}

// Rebind rewrites ? placeholders into the dialect's native form
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(conn *sql.DB, d Dialect) error {
	timestamp := "TIMESTAMP"
	if d == Postgres {
		timestamp = "TIMESTAMPTZ"
	}

	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{timestamp}}", timestamp)
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropSchema removes every table, for tests
func DropSchema(conn *sql.DB) error {
	for _, table := range []string{"vote", "poll_option", "poll"} {
		if _, err := conn.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

var schema = []string{
	// Polls
	`CREATE TABLE IF NOT EXISTS poll (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL
	)`,

	// Options
	`CREATE TABLE IF NOT EXISTS poll_option (
		id TEXT PRIMARY KEY,
		poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		vote_count BIGINT NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
		UNIQUE (id, poll_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id)`,

	// Votes
	// The composite key keeps a vote's option inside the vote's poll
	`CREATE TABLE IF NOT EXISTS vote (
		id TEXT PRIMARY KEY,
		poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
		option_id TEXT NOT NULL,
		voter_ip TEXT NOT NULL,
		voter_fingerprint TEXT NOT NULL,
		created_at {{timestamp}} NOT NULL,
		FOREIGN KEY (option_id, poll_id) REFERENCES poll_option(id, poll_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vote_poll_created ON vote(poll_id, created_at)`,

	// One vote per known address and per known fingerprint within a poll
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_vote_poll_ip
		ON vote(poll_id, voter_ip) WHERE voter_ip <> 'unknown'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_vote_poll_fingerprint
		ON vote(poll_id, voter_fingerprint) WHERE voter_fingerprint <> 'unknown'`,
}
