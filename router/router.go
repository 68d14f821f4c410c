// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quick-poll/handlers"
	"github.com/danielhkuo/quick-poll/middleware"
	"github.com/danielhkuo/quick-poll/ratelimit"
	"github.com/danielhkuo/quick-poll/voting"
)

// NewRouter wires the API routes. createLimiter gates poll creation and
// voteLimiter gates vote submission; either may be nil to disable limiting.
func NewRouter(engine *voting.Engine, createLimiter, voteLimiter ratelimit.Limiter) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(engine, createLimiter)
	votingHandler := handlers.NewVotingHandler(engine, voteLimiter)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Polls
	mux.HandleFunc("POST /api/polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /api/polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /api/polls/{id}/responses", middleware.WithLogging(pollHandler.ListResponses))

	// Voting
	mux.HandleFunc("POST /api/polls/{id}/vote", middleware.WithLogging(votingHandler.CastVote))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quick-poll API v1"))
	})

	return mux
}
