// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quick-poll/db"
	"github.com/danielhkuo/quick-poll/identity"
	"github.com/danielhkuo/quick-poll/ids"
	"github.com/danielhkuo/quick-poll/models"
)

// SQL is the durable store, backed by Postgres or SQLite. Duplicate votes
// are rejected by the partial unique indexes on the vote table.
type SQL struct {
	conn    *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

// NewSQL wraps an open connection whose schema already exists
func NewSQL(conn *sql.DB, dialect db.Dialect) *SQL {
	return &SQL{conn: conn, dialect: dialect, now: time.Now}
}

// Open connects to the configured database and creates the schema
func Open(dialect db.Dialect, url string) (*SQL, error) {
	conn, err := db.Open(dialect, url)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}
	return NewSQL(conn, dialect), nil
}

func (s *SQL) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *SQL) CreatePoll(ctx context.Context, question string, options []string) (models.Poll, error) {
	if err := checkDraft(question, options); err != nil {
		return models.Poll{}, err
	}

	poll := models.Poll{
		ID:        ids.New(),
		Question:  question,
		CreatedAt: s.now().UTC(),
		Options:   make([]models.Option, 0, len(options)),
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO poll (id, question, created_at) VALUES (?, ?, ?)
	`), poll.ID, poll.Question, poll.CreatedAt)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}

	insertOption := s.q(`INSERT INTO poll_option (id, poll_id, label, vote_count) VALUES (?, ?, ?, 0)`)
	for _, text := range options {
		opt := models.Option{ID: ids.New(), PollID: poll.ID, Text: text}
		if _, err := tx.ExecContext(ctx, insertOption, opt.ID, opt.PollID, opt.Text); err != nil {
			return models.Poll{}, fmt.Errorf("failed to insert option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to commit poll: %w", err)
	}

	return poll, nil
}

func (s *SQL) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	poll := models.Poll{ID: id}
	err := s.conn.QueryRowContext(ctx, s.q(`
		SELECT question, created_at FROM poll WHERE id = ?
	`), id).Scan(&poll.Question, &poll.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	poll.CreatedAt = poll.CreatedAt.UTC()

	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT id, label, vote_count FROM poll_option
		WHERE poll_id = ?
		ORDER BY id
	`), id)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		opt := models.Option{PollID: id}
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.VoteCount); err != nil {
			return models.Poll{}, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to read options: %w", err)
	}

	return poll, nil
}

func (s *SQL) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found int
	err := s.conn.QueryRowContext(ctx, s.q(query), args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQL) PollExists(ctx context.Context, id string) (bool, error) {
	ok, err := s.exists(ctx, `SELECT 1 FROM poll WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check poll: %w", err)
	}
	return ok, nil
}

func (s *SQL) OptionBelongsToPoll(ctx context.Context, optionID, pollID string) (bool, error) {
	ok, err := s.exists(ctx, `SELECT 1 FROM poll_option WHERE id = ? AND poll_id = ?`, optionID, pollID)
	if err != nil {
		return false, fmt.Errorf("failed to check option: %w", err)
	}
	return ok, nil
}

func (s *SQL) HasVoted(ctx context.Context, pollID, address string) (bool, error) {
	if !identity.Known(address) {
		return false, nil
	}
	ok, err := s.exists(ctx, `SELECT 1 FROM vote WHERE poll_id = ? AND voter_ip = ? LIMIT 1`, pollID, address)
	if err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}
	return ok, nil
}

func (s *SQL) HasVotedByFingerprint(ctx context.Context, pollID, fingerprint string) (bool, error) {
	if !identity.Known(fingerprint) {
		return false, nil
	}
	ok, err := s.exists(ctx, `SELECT 1 FROM vote WHERE poll_id = ? AND voter_fingerprint = ? LIMIT 1`, pollID, fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return ok, nil
}

// RecordVote inserts the ledger row and bumps the option count in one
// transaction. The count is incremented in SQL so concurrent votes for the
// same option never lose updates.
func (s *SQL) RecordVote(ctx context.Context, pollID, optionID, address, fingerprint string) (models.Vote, error) {
	vote := models.Vote{
		ID:               ids.New(),
		PollID:           pollID,
		OptionID:         optionID,
		VoterIP:          address,
		VoterFingerprint: fingerprint,
		CreatedAt:        s.now().UTC(),
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO vote (id, poll_id, option_id, voter_ip, voter_fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), vote.ID, vote.PollID, vote.OptionID, vote.VoterIP, vote.VoterFingerprint, vote.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return models.Vote{}, ErrDuplicateVote
		case isForeignKeyViolation(err):
			return models.Vote{}, ErrInvalidOption
		}
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.q(`
		UPDATE poll_option SET vote_count = vote_count + 1
		WHERE id = ? AND poll_id = ?
	`), optionID, pollID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to increment vote count: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return models.Vote{}, ErrInvalidOption
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return models.Vote{}, ErrDuplicateVote
		}
		return models.Vote{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	return vote, nil
}

func (s *SQL) ListVotes(ctx context.Context, pollID string) ([]models.Response, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT v.id, COALESCE(o.label, 'Unknown'), v.voter_ip, v.created_at
		FROM vote v
		LEFT JOIN poll_option o ON o.id = v.option_id
		WHERE v.poll_id = ?
		ORDER BY v.created_at DESC, v.id DESC
	`), pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.OptionText, &r.VoterIP, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}

	return responses, nil
}

func (s *SQL) ReconcileCounts(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `
		UPDATE poll_option SET vote_count = (
			SELECT COUNT(*) FROM vote WHERE vote.option_id = poll_option.id
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to reconcile vote counts: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.conn.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
