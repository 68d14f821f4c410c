// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ids generates and validates record identifiers.

Polls, options and votes are identified by random 128-bit UUIDs rendered in
canonical lowercase 8-4-4-4-12 form:

	id := ids.New()

Every id arriving from a client is checked before any storage lookup:

	if !ids.Valid(pollID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid poll ID.")
		return
	}

Upper case, braces and urn:uuid: prefixes are rejected even though they
denote the same value, so one poll has exactly one URL.
*/
package ids
