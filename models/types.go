// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll and option limits
const (
	MaxQuestionLength = 500
	MaxOptionLength   = 200
	MinOptions        = 2
	MaxOptions        = 10
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CastVoteRequest struct {
	OptionID    string `json:"option_id"`
	Fingerprint string `json:"fingerprint"`
}

// Response types

type CreatePollResponse struct {
	Poll Poll `json:"poll"`
}

type CastVoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ResponsesResponse struct {
	Responses []Response `json:"responses"`
}

// Domain types

type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
	Options   []Option  `json:"options"`
}

type Option struct {
	ID        string `json:"id"`
	PollID    string `json:"poll_id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"vote_count"`
}

type Vote struct {
	ID               string    `json:"id"`
	PollID           string    `json:"poll_id"`
	OptionID         string    `json:"option_id"`
	VoterIP          string    `json:"-"` // Only exposed through Response
	VoterFingerprint string    `json:"-"` // Never expose in JSON
	CreatedAt        time.Time `json:"created_at"`
}

// Response is one ledger row as shown in the responses view
type Response struct {
	ID         string    `json:"id"`
	OptionText string    `json:"option_text"`
	VoterIP    string    `json:"voter_ip"`
	CreatedAt  time.Time `json:"created_at"`
}

// TotalVotes sums the option counts
func (p Poll) TotalVotes() int64 {
	var total int64
	for _, o := range p.Options {
		total += o.VoteCount
	}
	return total
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
