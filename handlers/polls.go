// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quick-poll/ids"
	"github.com/danielhkuo/quick-poll/middleware"
	"github.com/danielhkuo/quick-poll/models"
	"github.com/danielhkuo/quick-poll/ratelimit"
	"github.com/danielhkuo/quick-poll/voting"
)

type PollHandler struct {
	engine  *voting.Engine
	limiter ratelimit.Limiter
}

// NewPollHandler creates the poll handler. limiter gates CreatePoll only.
func NewPollHandler(engine *voting.Engine, limiter ratelimit.Limiter) *PollHandler {
	return &PollHandler{engine: engine, limiter: limiter}
}

// CreatePoll handles POST /api/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	if !admit(r.Context(), w, r, h.limiter, "Too many requests. Please wait before creating another poll.") {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.engine.CreatePoll(r.Context(), req.Question, req.Options)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{Poll: poll})
}

// GetPoll handles GET /api/polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if !ids.Valid(pollID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid poll ID format.")
		return
	}

	poll, err := h.engine.GetPoll(r.Context(), pollID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ListResponses handles GET /api/polls/{id}/responses
func (h *PollHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if !ids.Valid(pollID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid poll ID format.")
		return
	}

	responses, err := h.engine.ListResponses(r.Context(), pollID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResponsesResponse{Responses: responses})
}
