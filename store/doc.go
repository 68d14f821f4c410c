// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds polls, their options and the vote ledger.

# Backends

Store has two implementations, picked by configuration in main:

  - Memory: maps behind one mutex, for tests and throwaway runs
  - SQL: Postgres or SQLite through database/sql

	s, err := store.Open(db.SQLite, "quick-poll.db")
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

# Recording Votes

RecordVote is the only write to the ledger. It appends the vote and adds
one to the option's vote_count in a single step, so a vote is either fully
recorded or not recorded at all.

Duplicate detection is enforced here, not by callers. The SQL backend
relies on the partial unique indexes from package db and translates a
unique violation into ErrDuplicateVote. Memory does the check and the
append under the same lock. HasVoted and HasVotedByFingerprint are fast
paths for the engine; they never report a match for "unknown".

# Errors

  - ErrNotFound: no poll with that id
  - ErrInvalidPoll: draft rejected (empty question, not 2-10 options)
  - ErrInvalidOption: option missing or owned by another poll
  - ErrDuplicateVote: address or fingerprint already voted on the poll

# Reconciliation

ReconcileCounts rewrites every vote_count from the ledger. Counts and
ledger only drift if the database was edited by hand.
*/
package store
