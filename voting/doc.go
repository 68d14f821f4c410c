// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements poll creation and the vote acceptance rules.

# Creating Polls

CreatePoll trims the question and options, drops blank options and
validates the rest with github.com/go-playground/validator/v10 against
the limits in package models:

  - question: 1-500 characters
  - options: 2-10 submitted, at least 2 non-empty, each at most 200
    characters, no duplicates ignoring case

Option checks run in that order, so an overlong option is reported as
too long even when it is also a duplicate.

# Casting Votes

A vote is checked in this order, stopping at the first failure:

 1. poll exists (ErrNotFound)
 2. option belongs to the poll (ErrInvalidOption)
 3. address has not voted on the poll (ErrDuplicateVote)
 4. fingerprint has not voted on the poll (ErrDuplicateVote)
 5. the store records the vote

A vote is refused if either signal repeats. Shared addresses behind NAT
can block each other; that is accepted in exchange for not letting a
voter through by clearing just one signal. Signals equal to "unknown"
never match anything.

If two identical votes race past steps 3 and 4, the store rejects the
second one and it is reported as ErrDuplicateVote like any other.

# Errors

Errors other than ValidationError and the three sentinels are unexpected
and wrap the underlying store error.
*/
package voting
