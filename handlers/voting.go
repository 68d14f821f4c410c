// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quick-poll/identity"
	"github.com/danielhkuo/quick-poll/ids"
	"github.com/danielhkuo/quick-poll/middleware"
	"github.com/danielhkuo/quick-poll/models"
	"github.com/danielhkuo/quick-poll/ratelimit"
	"github.com/danielhkuo/quick-poll/voting"
)

type VotingHandler struct {
	engine  *voting.Engine
	limiter ratelimit.Limiter
}

func NewVotingHandler(engine *voting.Engine, limiter ratelimit.Limiter) *VotingHandler {
	return &VotingHandler{engine: engine, limiter: limiter}
}

// CastVote handles POST /api/polls/{id}/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	if !admit(r.Context(), w, r, h.limiter, "Too many vote attempts. Please slow down.") {
		return
	}

	pollID := r.PathValue("id")
	if !ids.Valid(pollID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid poll ID.")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !ids.Valid(req.OptionID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option ID.")
		return
	}

	voter := identity.Resolve(r.Header, req.Fingerprint)
	if _, err := h.engine.CastVote(r.Context(), pollID, req.OptionID, voter); err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		Success: true,
		Message: "Vote recorded successfully!",
	})
}
