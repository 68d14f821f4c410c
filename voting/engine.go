// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/quick-poll/identity"
	"github.com/danielhkuo/quick-poll/ids"
	"github.com/danielhkuo/quick-poll/models"
	"github.com/danielhkuo/quick-poll/store"
)

// Engine applies the poll and vote rules on top of a Store
type Engine struct {
	store    store.Store
	validate *validator.Validate
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s, validate: newValidator()}
}

// CreatePoll validates and persists a new poll
func (e *Engine) CreatePoll(ctx context.Context, question string, options []string) (models.Poll, error) {
	question, options, err := e.cleanDraft(question, options)
	if err != nil {
		return models.Poll{}, err
	}

	poll, err := e.store.CreatePoll(ctx, question, options)
	if err != nil {
		if errors.Is(err, store.ErrInvalidPoll) {
			return models.Poll{}, invalid("Invalid poll.")
		}
		return models.Poll{}, fmt.Errorf("create poll: %w", err)
	}

	slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))
	return poll, nil
}

func (e *Engine) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	if !ids.Valid(id) {
		return models.Poll{}, invalid("Invalid poll ID format.")
	}

	poll, err := e.store.GetPoll(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("get poll: %w", err)
	}
	return poll, nil
}

// CastVote accepts one vote from voter, rejecting it if either identity
// signal has already been used on the poll.
//
// The HasVoted checks only save a write in the common case. The store's
// RecordVote is what actually guarantees one vote per known signal when
// two requests race.
func (e *Engine) CastVote(ctx context.Context, pollID, optionID string, voter identity.Identity) (models.Vote, error) {
	if !ids.Valid(pollID) {
		return models.Vote{}, invalid("Invalid poll ID format.")
	}
	if !ids.Valid(optionID) {
		return models.Vote{}, invalid("Invalid option ID.")
	}

	exists, err := e.store.PollExists(ctx, pollID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("check poll: %w", err)
	}
	if !exists {
		return models.Vote{}, ErrNotFound
	}

	owned, err := e.store.OptionBelongsToPoll(ctx, optionID, pollID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("check option: %w", err)
	}
	if !owned {
		return models.Vote{}, ErrInvalidOption
	}

	voted, err := e.store.HasVoted(ctx, pollID, voter.Address)
	if err != nil {
		return models.Vote{}, fmt.Errorf("check address: %w", err)
	}
	if voted {
		return models.Vote{}, ErrDuplicateVote
	}

	voted, err = e.store.HasVotedByFingerprint(ctx, pollID, voter.Fingerprint)
	if err != nil {
		return models.Vote{}, fmt.Errorf("check fingerprint: %w", err)
	}
	if voted {
		return models.Vote{}, ErrDuplicateVote
	}

	vote, err := e.store.RecordVote(ctx, pollID, optionID, voter.Address, voter.Fingerprint)
	switch {
	case errors.Is(err, store.ErrDuplicateVote):
		slog.Info("duplicate vote rejected at write", "poll_id", pollID)
		return models.Vote{}, ErrDuplicateVote
	case errors.Is(err, store.ErrInvalidOption):
		return models.Vote{}, ErrInvalidOption
	case errors.Is(err, store.ErrNotFound):
		return models.Vote{}, ErrNotFound
	case err != nil:
		return models.Vote{}, fmt.Errorf("record vote: %w", err)
	}

	slog.Info("vote recorded", "poll_id", pollID, "option_id", optionID)
	return vote, nil
}

// ListResponses returns the poll's votes newest first
func (e *Engine) ListResponses(ctx context.Context, pollID string) ([]models.Response, error) {
	if !ids.Valid(pollID) {
		return nil, invalid("Invalid poll ID format.")
	}

	exists, err := e.store.PollExists(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("check poll: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	responses, err := e.store.ListVotes(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return responses, nil
}
