// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity derives the two voter signals used for duplicate detection.

# Network Address

The address comes from proxy headers only:

	addr := identity.ClientAddress(r.Header)

X-Forwarded-For wins (first comma separated entry), then X-Real-IP. With
neither present the literal "unknown" is returned. RemoteAddr is
deliberately not consulted: behind the deployment proxy it is always the
proxy itself and would block every voter after the first.

# Fingerprint

The fingerprint is an opaque token computed in the browser and posted with
the vote. It is never derived server-side; an empty token becomes "unknown".

# Unknown Signals

"unknown" carries no information, so it is exempt from duplicate checks.
Use Known to test a signal before comparing it.
*/
package identity
