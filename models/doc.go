// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreatePollRequest: question, options
  - CastVoteRequest: option_id, fingerprint

# Response Types

  - CreatePollResponse: poll
  - CastVoteResponse: success, message
  - ResponsesResponse: responses
  - ErrorResponse: error, message

# Domain Types

  - Poll: question plus options ordered by id
  - Option: display text and running vote_count
  - Vote: one immutable ledger entry
  - Response: a vote joined with its option text, for the responses view

Vote fingerprints are tagged json:"-" and never leave the server.

# Limits

	MaxQuestionLength = 500
	MaxOptionLength   = 200
	MinOptions        = 2
	MaxOptions        = 10

Lengths count characters (runes), not bytes.
*/
package models
