// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quick-poll/ids"
	"github.com/danielhkuo/quick-poll/models"
	"github.com/danielhkuo/quick-poll/ratelimit"
	"github.com/danielhkuo/quick-poll/testutil"
	"github.com/danielhkuo/quick-poll/voting"
)

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()
	return NewRouter(voting.NewEngine(testutil.NewMemoryStore()), nil, nil)
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	expected := "quick-poll API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux := newTestRouter(t)
	id := ids.New()

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/api/polls"},
		{"GET", "/api/polls/" + id},
		{"POST", "/api/polls/" + id + "/vote"},
		{"GET", "/api/polls/" + id + "/responses"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			// 400 and 404 are handler answers; 405 means no route
			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"GET to vote endpoint", "GET", "/api/polls/" + ids.New() + "/vote", http.StatusMethodNotAllowed},
		{"DELETE a poll", "DELETE", "/api/polls/" + ids.New(), http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/api/nothing/here", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

// TestFullVotingWorkflow runs create, vote, read and the responses view
// through the router
func TestFullVotingWorkflow(t *testing.T) {
	for name, open := range testutil.Stores() {
		t.Run(name, func(t *testing.T) {
			mux := NewRouter(voting.NewEngine(open(t)), nil, nil)

			// Step 1: Create a poll
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/polls", models.CreatePollRequest{
				Question: "Tea or coffee?",
				Options:  []string{"Tea", "Coffee"},
			}, nil))
			testutil.AssertStatus(t, w, http.StatusCreated)

			var created models.CreatePollResponse
			testutil.AssertJSON(t, w, &created)
			poll := created.Poll
			tea := testutil.OptionID(t, poll, "Tea")
			coffee := testutil.OptionID(t, poll, "Coffee")

			// Step 2: Votes
			votes := []struct {
				option string
				addr   string
				fp     string
				status int
			}{
				{tea, "1.2.3.4", "f1", http.StatusOK},
				{coffee, "1.2.3.4", "f1", http.StatusConflict},
				{coffee, "5.6.7.8", "f1", http.StatusConflict},
				{coffee, "5.6.7.8", "f2", http.StatusOK},
			}
			for i, v := range votes {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/polls/"+poll.ID+"/vote",
					models.CastVoteRequest{OptionID: v.option, Fingerprint: v.fp}, testutil.FromAddress(v.addr)))
				if w.Code != v.status {
					t.Fatalf("Step 2 - vote %d: expected %d, got %d - %s", i, v.status, w.Code, w.Body.String())
				}
			}

			// Step 3: Read the poll
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/polls/"+poll.ID, nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var got models.Poll
			testutil.AssertJSON(t, w, &got)
			if got.TotalVotes() != 2 {
				t.Errorf("Step 3 - expected 2 votes, got %d", got.TotalVotes())
			}
			for _, o := range got.Options {
				if o.VoteCount != 1 {
					t.Errorf("Step 3 - expected 1 vote for %s, got %d", o.Text, o.VoteCount)
				}
			}

			// Step 4: Responses view
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/polls/"+poll.ID+"/responses", nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.ResponsesResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Responses) != 2 {
				t.Fatalf("Step 4 - expected 2 responses, got %d", len(resp.Responses))
			}
			if resp.Responses[0].VoterIP != "5.6.7.8" || resp.Responses[0].OptionText != "Coffee" {
				t.Errorf("Step 4 - expected newest response first, got %+v", resp.Responses[0])
			}
		})
	}
}

func TestRateLimitedRoutes(t *testing.T) {
	createLimiter := ratelimit.NewMemory(ratelimit.Policy{Window: ratelimit.CreatePolicy.Window, Max: 1}, ratelimit.WithoutSweeper())
	voteLimiter := ratelimit.NewMemory(ratelimit.Policy{Window: ratelimit.VotePolicy.Window, Max: 1}, ratelimit.WithoutSweeper())
	defer createLimiter.Close()
	defer voteLimiter.Close()

	mux := NewRouter(voting.NewEngine(testutil.NewMemoryStore()), createLimiter, voteLimiter)
	body := models.CreatePollRequest{Question: "q", Options: []string{"a", "b"}}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/polls", body, testutil.FromAddress("1.1.1.1")))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreatePollResponse
	testutil.AssertJSON(t, w, &created)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/polls", body, testutil.FromAddress("1.1.1.1")))
	testutil.AssertStatus(t, w, http.StatusTooManyRequests)

	// Vote budget is separate from the creation budget
	vote := models.CastVoteRequest{OptionID: created.Poll.Options[0].ID, Fingerprint: "x"}
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/polls/"+created.Poll.ID+"/vote", vote, testutil.FromAddress("1.1.1.1")))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/api/polls/"+created.Poll.ID+"/vote", vote, testutil.FromAddress("1.1.1.1")))
	testutil.AssertStatus(t, w, http.StatusTooManyRequests)

	// Reads are never limited
	for i := 0; i < 3; i++ {
		w = httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", "/api/polls/"+created.Poll.ID, nil, testutil.FromAddress("1.1.1.1")))
		testutil.AssertStatus(t, w, http.StatusOK)
	}
}
