// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/quick-poll/identity"
	"github.com/danielhkuo/quick-poll/ids"
	"github.com/danielhkuo/quick-poll/models"
)

type pollRecord struct {
	question  string
	createdAt time.Time
	optionIDs []string // sorted
}

type voterKey struct {
	pollID string
	signal string
}

// Memory keeps everything in process memory. One mutex guards all
// tables, so the duplicate check and the append in RecordVote are a
// single critical section.
type Memory struct {
	now func() time.Time

	mu            sync.RWMutex
	polls         map[string]*pollRecord
	options       map[string]*models.Option
	votes         map[string][]models.Vote // by poll, append order
	byAddress     map[voterKey]struct{}
	byFingerprint map[voterKey]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		now:           time.Now,
		polls:         make(map[string]*pollRecord),
		options:       make(map[string]*models.Option),
		votes:         make(map[string][]models.Vote),
		byAddress:     make(map[voterKey]struct{}),
		byFingerprint: make(map[voterKey]struct{}),
	}
}

func (m *Memory) CreatePoll(_ context.Context, question string, options []string) (models.Poll, error) {
	if err := checkDraft(question, options); err != nil {
		return models.Poll{}, err
	}

	poll := models.Poll{
		ID:        ids.New(),
		Question:  question,
		CreatedAt: m.now().UTC(),
		Options:   make([]models.Option, 0, len(options)),
	}

	record := &pollRecord{question: question, createdAt: poll.CreatedAt}
	for _, text := range options {
		opt := models.Option{ID: ids.New(), PollID: poll.ID, Text: text}
		poll.Options = append(poll.Options, opt)
		record.optionIDs = append(record.optionIDs, opt.ID)
	}
	sort.Strings(record.optionIDs)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.polls[poll.ID] = record
	for i := range poll.Options {
		opt := poll.Options[i]
		m.options[opt.ID] = &opt
	}

	return poll, nil
}

func (m *Memory) GetPoll(_ context.Context, id string) (models.Poll, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.polls[id]
	if !ok {
		return models.Poll{}, ErrNotFound
	}

	poll := models.Poll{
		ID:        id,
		Question:  record.question,
		CreatedAt: record.createdAt,
		Options:   make([]models.Option, 0, len(record.optionIDs)),
	}
	for _, optID := range record.optionIDs {
		poll.Options = append(poll.Options, *m.options[optID])
	}

	return poll, nil
}

func (m *Memory) PollExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.polls[id]
	return ok, nil
}

func (m *Memory) OptionBelongsToPoll(_ context.Context, optionID, pollID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	opt, ok := m.options[optionID]
	return ok && opt.PollID == pollID, nil
}

func (m *Memory) HasVoted(_ context.Context, pollID, address string) (bool, error) {
	if !identity.Known(address) {
		return false, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byAddress[voterKey{pollID, address}]
	return ok, nil
}

func (m *Memory) HasVotedByFingerprint(_ context.Context, pollID, fingerprint string) (bool, error) {
	if !identity.Known(fingerprint) {
		return false, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byFingerprint[voterKey{pollID, fingerprint}]
	return ok, nil
}

func (m *Memory) RecordVote(_ context.Context, pollID, optionID, address, fingerprint string) (models.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.polls[pollID]; !ok {
		return models.Vote{}, ErrNotFound
	}
	opt, ok := m.options[optionID]
	if !ok || opt.PollID != pollID {
		return models.Vote{}, ErrInvalidOption
	}

	addrKey := voterKey{pollID, address}
	fpKey := voterKey{pollID, fingerprint}
	if identity.Known(address) {
		if _, dup := m.byAddress[addrKey]; dup {
			return models.Vote{}, ErrDuplicateVote
		}
	}
	if identity.Known(fingerprint) {
		if _, dup := m.byFingerprint[fpKey]; dup {
			return models.Vote{}, ErrDuplicateVote
		}
	}

	vote := models.Vote{
		ID:               ids.New(),
		PollID:           pollID,
		OptionID:         optionID,
		VoterIP:          address,
		VoterFingerprint: fingerprint,
		CreatedAt:        m.now().UTC(),
	}

	m.votes[pollID] = append(m.votes[pollID], vote)
	if identity.Known(address) {
		m.byAddress[addrKey] = struct{}{}
	}
	if identity.Known(fingerprint) {
		m.byFingerprint[fpKey] = struct{}{}
	}
	opt.VoteCount++

	return vote, nil
}

func (m *Memory) ListVotes(_ context.Context, pollID string) ([]models.Response, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	votes := m.votes[pollID]
	responses := make([]models.Response, 0, len(votes))
	for _, v := range votes {
		text := "Unknown"
		if opt, ok := m.options[v.OptionID]; ok {
			text = opt.Text
		}
		responses = append(responses, models.Response{
			ID:         v.ID,
			OptionText: text,
			VoterIP:    v.VoterIP,
			CreatedAt:  v.CreatedAt,
		})
	}

	sortNewestFirst(responses)
	return responses, nil
}

func (m *Memory) ReconcileCounts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int64)
	for _, votes := range m.votes {
		for _, v := range votes {
			counts[v.OptionID]++
		}
	}
	for id, opt := range m.options {
		opt.VoteCount = counts[id]
	}

	return nil
}

func (m *Memory) Close() error {
	return nil
}

// sortNewestFirst orders by created_at descending, ties by id descending
// so repeated listings agree with the SQL backends
func sortNewestFirst(responses []models.Response) {
	sort.SliceStable(responses, func(i, j int) bool {
		a, b := responses[i], responses[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
