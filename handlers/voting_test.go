// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quick-poll/identity"
	"github.com/danielhkuo/quick-poll/ids"
	"github.com/danielhkuo/quick-poll/models"
	"github.com/danielhkuo/quick-poll/ratelimit"
	"github.com/danielhkuo/quick-poll/store"
	"github.com/danielhkuo/quick-poll/testutil"
	"github.com/danielhkuo/quick-poll/voting"
)

func castVote(h *VotingHandler, pollID string, body any, headers map[string]string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("POST", "/api/polls/"+pollID+"/vote", body, headers)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	h.CastVote(w, req)
	return w
}

func voteCounts(t *testing.T, s store.Store, pollID string) map[string]int64 {
	t.Helper()

	poll, err := s.GetPoll(context.Background(), pollID)
	if err != nil {
		t.Fatalf("GetPoll: %v", err)
	}
	counts := make(map[string]int64, len(poll.Options))
	for _, o := range poll.Options {
		counts[o.Text] = o.VoteCount
	}
	return counts
}

func TestCastVote_TeaOrCoffee(t *testing.T) {
	for name, open := range testutil.Stores() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			h := NewVotingHandler(voting.NewEngine(s), nil)
			poll := testutil.CreateTestPoll(t, s, "Tea or coffee?", "Tea", "Coffee")
			tea := testutil.OptionID(t, poll, "Tea")
			coffee := testutil.OptionID(t, poll, "Coffee")

			steps := []struct {
				name   string
				option string
				addr   string
				fp     string
				status int
				tea    int64
				coffee int64
			}{
				{"first vote", tea, "1.2.3.4", "f1", http.StatusOK, 1, 0},
				{"same address", coffee, "1.2.3.4", "f1", http.StatusConflict, 1, 0},
				{"same fingerprint", coffee, "5.6.7.8", "f1", http.StatusConflict, 1, 0},
				{"new voter", coffee, "5.6.7.8", "f2", http.StatusOK, 1, 1},
			}

			for _, step := range steps {
				w := castVote(h, poll.ID, models.CastVoteRequest{OptionID: step.option, Fingerprint: step.fp}, testutil.FromAddress(step.addr))
				testutil.AssertStatus(t, w, step.status)

				counts := voteCounts(t, s, poll.ID)
				if counts["Tea"] != step.tea || counts["Coffee"] != step.coffee {
					t.Errorf("%s: counts = %v, want Tea=%d Coffee=%d", step.name, counts, step.tea, step.coffee)
				}
			}
		})
	}
}

func TestCastVote_Success(t *testing.T) {
	s := testutil.NewMemoryStore()
	h := NewVotingHandler(voting.NewEngine(s), nil)
	poll := testutil.CreateTestPoll(t, s, "q", "a", "b")

	w := castVote(h, poll.ID, models.CastVoteRequest{OptionID: poll.Options[0].ID, Fingerprint: "fp"}, testutil.FromAddress("9.9.9.9"))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success || resp.Message != "Vote recorded successfully!" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestCastVote_Errors(t *testing.T) {
	s := testutil.NewMemoryStore()
	h := NewVotingHandler(voting.NewEngine(s), nil)
	poll := testutil.CreateTestPoll(t, s, "q", "a", "b")
	other := testutil.CreateTestPoll(t, s, "other", "x", "y")

	testCases := []struct {
		name    string
		pollID  string
		body    any
		status  int
		message string
	}{
		{"malformed poll id", "123", models.CastVoteRequest{OptionID: poll.Options[0].ID}, http.StatusBadRequest, "Invalid poll ID."},
		{"missing option id", poll.ID, models.CastVoteRequest{}, http.StatusBadRequest, "Invalid option ID."},
		{"malformed option id", poll.ID, models.CastVoteRequest{OptionID: "opt-1"}, http.StatusBadRequest, "Invalid option ID."},
		{"unknown poll", ids.New(), models.CastVoteRequest{OptionID: poll.Options[0].ID}, http.StatusNotFound, "Poll not found."},
		{"option of other poll", poll.ID, models.CastVoteRequest{OptionID: other.Options[0].ID}, http.StatusBadRequest, "Option not found in this poll."},
		{"unknown option", poll.ID, models.CastVoteRequest{OptionID: ids.New()}, http.StatusBadRequest, "Option not found in this poll."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := castVote(h, tc.pollID, tc.body, testutil.FromAddress("1.1.1.1"))
			testutil.AssertError(t, w, tc.status, tc.message)
		})
	}

	if counts := voteCounts(t, s, poll.ID); counts["a"]+counts["b"] != 0 {
		t.Errorf("Expected no votes, got %v", counts)
	}
}

func TestCastVote_InvalidJSON(t *testing.T) {
	s := testutil.NewMemoryStore()
	h := NewVotingHandler(voting.NewEngine(s), nil)
	poll := testutil.CreateTestPoll(t, s, "q", "a", "b")

	req := httptest.NewRequest("POST", "/api/polls/"+poll.ID+"/vote", strings.NewReader("nope"))
	req.SetPathValue("id", poll.ID)
	w := httptest.NewRecorder()
	h.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVote_AnonymousVotersNotBlocked(t *testing.T) {
	s := testutil.NewMemoryStore()
	h := NewVotingHandler(voting.NewEngine(s), nil)
	poll := testutil.CreateTestPoll(t, s, "q", "a", "b")

	// No address headers and no fingerprint: both signals are unknown
	for i := 0; i < 3; i++ {
		w := castVote(h, poll.ID, models.CastVoteRequest{OptionID: poll.Options[0].ID}, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	responses, _ := s.ListVotes(context.Background(), poll.ID)
	for _, r := range responses {
		if r.VoterIP != identity.Unknown {
			t.Errorf("Expected voter_ip %q, got %q", identity.Unknown, r.VoterIP)
		}
	}
}

func TestCastVote_UsesRealIPHeader(t *testing.T) {
	s := testutil.NewMemoryStore()
	h := NewVotingHandler(voting.NewEngine(s), nil)
	poll := testutil.CreateTestPoll(t, s, "q", "a", "b")

	w := castVote(h, poll.ID, models.CastVoteRequest{OptionID: poll.Options[0].ID}, map[string]string{"X-Real-IP": "4.4.4.4"})
	testutil.AssertStatus(t, w, http.StatusOK)

	w = castVote(h, poll.ID, models.CastVoteRequest{OptionID: poll.Options[1].ID}, map[string]string{"X-Forwarded-For": "4.4.4.4, 10.0.0.1"})
	testutil.AssertError(t, w, http.StatusConflict, "You have already voted on this poll.")
}

func TestCastVote_RateLimited(t *testing.T) {
	limiter := ratelimit.NewMemory(ratelimit.VotePolicy, ratelimit.WithoutSweeper())
	defer limiter.Close()

	s := testutil.NewMemoryStore()
	h := NewVotingHandler(voting.NewEngine(s), limiter)
	poll := testutil.CreateTestPoll(t, s, "q", "a", "b")

	// Duplicates still count as attempts
	for i := 0; i < ratelimit.VotePolicy.Max; i++ {
		w := castVote(h, poll.ID, models.CastVoteRequest{OptionID: poll.Options[0].ID, Fingerprint: "fp"}, testutil.FromAddress("3.3.3.3"))
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("Attempt %d rate limited too early", i+1)
		}
	}

	w := castVote(h, poll.ID, models.CastVoteRequest{OptionID: poll.Options[0].ID, Fingerprint: "fp"}, testutil.FromAddress("3.3.3.3"))
	testutil.AssertError(t, w, http.StatusTooManyRequests, "Too many vote attempts. Please slow down.")
}

func TestCastVote_RateLimitBeforeValidation(t *testing.T) {
	limiter := &stubLimiter{allow: false}
	h := NewVotingHandler(voting.NewEngine(testutil.NewMemoryStore()), limiter)

	w := castVote(h, "not-an-id", nil, nil)
	testutil.AssertStatus(t, w, http.StatusTooManyRequests)
}
