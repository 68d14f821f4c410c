// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/quick-poll/db"
	"github.com/danielhkuo/quick-poll/models"
	"github.com/danielhkuo/quick-poll/store"
)

// TestDBURLEnv names the variable holding a Postgres URL for tests.
// Postgres tests are skipped when it is unset.
const TestDBURLEnv = "TEST_DATABASE_URL"

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() store.Store {
	return store.NewMemory()
}

// NewSQLiteStore creates a fresh SQLite database in the test's temp dir
func NewSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	s, err := store.Open(db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// NewPostgresStore returns a store on a freshly recreated schema, or skips
func NewPostgresStore(t *testing.T) store.Store {
	t.Helper()

	url := os.Getenv(TestDBURLEnv)
	if url == "" {
		t.Skipf("%s not set", TestDBURLEnv)
	}

	conn, err := db.Open(db.Postgres, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Clean up tables before each test
	if err := db.DropSchema(conn); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(conn, db.Postgres); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	s := store.NewSQL(conn, db.Postgres)
	t.Cleanup(func() { s.Close() })

	return s
}

// Stores returns constructors for every backend available to the test run
func Stores() map[string]func(t *testing.T) store.Store {
	stores := map[string]func(t *testing.T) store.Store{
		"memory": func(*testing.T) store.Store { return NewMemoryStore() },
		"sqlite": NewSQLiteStore,
	}
	if os.Getenv(TestDBURLEnv) != "" {
		stores["postgres"] = NewPostgresStore
	}
	return stores
}

// CreateTestPoll stores a poll directly, bypassing validation
func CreateTestPoll(t *testing.T, s store.Store, question string, options ...string) models.Poll {
	t.Helper()

	poll, err := s.CreatePoll(context.Background(), question, options)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return poll
}

// OptionID returns the id of the option with the given text
func OptionID(t *testing.T, poll models.Poll, text string) string {
	t.Helper()

	for _, o := range poll.Options {
		if o.Text == text {
			return o.ID
		}
	}
	t.Fatalf("Option %q not in poll %s", text, poll.ID)
	return ""
}

// FromAddress returns headers making the request appear to come from addr
func FromAddress(addr string) map[string]string {
	return map[string]string{"X-Forwarded-For": addr}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertError checks status and the message of an error response
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Message != message {
		t.Errorf("Expected message %q, got %q", message, resp.Message)
	}
}
