// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quick-poll/identity"
	"github.com/danielhkuo/quick-poll/middleware"
	"github.com/danielhkuo/quick-poll/ratelimit"
	"github.com/danielhkuo/quick-poll/voting"
)

const (
	msgPollNotFound  = "Poll not found."
	msgInvalidOption = "Option not found in this poll."
	msgDuplicateVote = "You have already voted on this poll."
	msgUnexpected    = "An unexpected error occurred."
)

// writeError maps engine errors onto status codes. Anything unrecognized is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *voting.ValidationError
	switch {
	case errors.As(err, &ve):
		middleware.ErrorResponse(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, voting.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, msgPollNotFound)
	case errors.Is(err, voting.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidOption)
	case errors.Is(err, voting.ErrDuplicateVote):
		middleware.ErrorResponse(w, http.StatusConflict, msgDuplicateVote)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgUnexpected)
	}
}

// admit applies limiter to the caller's address and writes a 429 when the
// caller is over budget. A limiter failure lets the request through.
func admit(ctx context.Context, w http.ResponseWriter, r *http.Request, limiter ratelimit.Limiter, message string) bool {
	if limiter == nil {
		return true
	}

	allowed, err := limiter.Allow(ctx, identity.ClientAddress(r.Header))
	if err != nil {
		slog.Warn("rate limiter unavailable", "path", r.URL.Path, "error", err)
		return true
	}
	if !allowed {
		middleware.ErrorResponse(w, http.StatusTooManyRequests, message)
		return false
	}
	return true
}
