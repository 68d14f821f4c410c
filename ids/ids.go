// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ids

import (
	"regexp"

	"github.com/google/uuid"
)

// canonical lowercase 8-4-4-4-12 form; uuid.Parse alone also accepts
// braces, urn: prefixes and upper case, which we reject
var canonical = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// New returns a random (v4) 128-bit id in canonical form
func New() string {
	return uuid.NewString()
}

// Valid reports whether id is in canonical lowercase hyphenated form
func Valid(id string) bool {
	if !canonical.MatchString(id) {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
