// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quick Poll API.

# Handler Types

Each handler is a struct over the voting engine and one rate limiter:

  - PollHandler: create, read, and the responses view
  - VotingHandler: vote submission

	pollHandler := handlers.NewPollHandler(engine, createLimiter)
	votingHandler := handlers.NewVotingHandler(engine, voteLimiter)

# Endpoints

	POST /api/polls                 → CreatePoll (201 {"poll": ...})
	GET  /api/polls/{id}            → GetPoll
	POST /api/polls/{id}/vote       → CastVote ({"option_id", "fingerprint"})
	GET  /api/polls/{id}/responses  → ListResponses (newest first)

Poll ids and option ids must be canonical lowercase UUIDs; anything else
is rejected with 400 before the store is touched.

# Rate Limiting

CreatePoll and CastVote are limited per client address (X-Forwarded-For,
then X-Real-IP). The limit is checked before anything else, so a rejected
request never parses its body. If the limiter itself fails the request is
let through and a warning is logged.

# Status Codes

	400  validation error, malformed id, option not in poll
	404  poll not found
	409  already voted on this poll
	429  rate limited
	500  anything else (logged, generic message)

Error bodies have the shape {"error": "<status text>", "message": "..."}.
*/
package handlers
