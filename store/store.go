// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"strings"

	"github.com/danielhkuo/quick-poll/models"
)

var (
	ErrNotFound       = errors.New("poll not found")
	ErrInvalidPoll    = errors.New("invalid poll")
	ErrInvalidOption  = errors.New("option does not belong to poll")
	ErrDuplicateVote  = errors.New("duplicate vote")
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Store is the poll/option store and vote ledger behind the voting engine.
// Implementations must make RecordVote atomic: the ledger append, its
// uniqueness checks and the count increment succeed or fail together.
type Store interface {
	// CreatePoll persists a poll and its options (in input order) with
	// zero counts. Returns ErrInvalidPoll for an empty question or an
	// option count outside [2,10].
	CreatePoll(ctx context.Context, question string, options []string) (models.Poll, error)

	// GetPoll returns the poll with options ordered by id, or ErrNotFound
	GetPoll(ctx context.Context, id string) (models.Poll, error)

	PollExists(ctx context.Context, id string) (bool, error)
	OptionBelongsToPoll(ctx context.Context, optionID, pollID string) (bool, error)

	// HasVoted and HasVotedByFingerprint never match "unknown"
	HasVoted(ctx context.Context, pollID, address string) (bool, error)
	HasVotedByFingerprint(ctx context.Context, pollID, fingerprint string) (bool, error)

	// RecordVote appends to the ledger and increments the option count.
	// Returns ErrDuplicateVote when either known signal already voted.
	RecordVote(ctx context.Context, pollID, optionID, address, fingerprint string) (models.Vote, error)

	// ListVotes returns the poll's ledger newest first
	ListVotes(ctx context.Context, pollID string) ([]models.Response, error)

	// ReconcileCounts recomputes every vote_count from the ledger
	ReconcileCounts(ctx context.Context) error

	Close() error
}

// checkDraft is the store's own guard; callers are expected to have
// validated properly already
func checkDraft(question string, options []string) error {
	if strings.TrimSpace(question) == "" {
		return ErrInvalidPoll
	}
	if len(options) < models.MinOptions || len(options) > models.MaxOptions {
		return ErrInvalidPoll
	}
	for _, o := range options {
		if strings.TrimSpace(o) == "" {
			return ErrInvalidPoll
		}
	}
	return nil
}
