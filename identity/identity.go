// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"net/http"
	"strings"
)

// Unknown stands in for a signal that could not be determined.
// It never collides with another Unknown in duplicate checks.
const Unknown = "unknown"

// Identity is the pair of weak voter signals attached to a vote attempt
type Identity struct {
	Address     string
	Fingerprint string
}

// Resolve derives both signals for a request. The fingerprint is produced
// client-side and passed through untouched.
func Resolve(h http.Header, fingerprint string) Identity {
	return Identity{
		Address:     ClientAddress(h),
		Fingerprint: Fingerprint(fingerprint),
	}
}

// ClientAddress extracts the network-origin address.
// Checks X-Forwarded-For (first entry), then X-Real-IP, then gives up.
// The value is not validated; a spoofed header only weakens dedup.
func ClientAddress(h http.Header) string {
	// Check X-Forwarded-For (load balancers)
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	// Check X-Real-IP (nginx)
	if xri := strings.TrimSpace(h.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return Unknown
}

// Fingerprint normalizes a client supplied fingerprint token
func Fingerprint(fp string) string {
	if fp == "" {
		return Unknown
	}
	return fp
}

// Known reports whether a signal carries any dedup information
func Known(signal string) bool {
	return signal != "" && signal != Unknown
}
