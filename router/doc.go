// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quick Poll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(engine, createLimiter, voteLimiter)

# Endpoints

Health:

	GET /health

Polls:

	POST /api/polls                - Create poll (rate limited)
	GET  /api/polls/{id}           - Poll with options and counts
	GET  /api/polls/{id}/responses - Vote ledger, newest first

Voting:

	POST /api/polls/{id}/vote - Cast a vote (rate limited)

Every API route is wrapped in middleware.WithLogging. CORS is applied by
the caller around the whole mux.
*/
package router
