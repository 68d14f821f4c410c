// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "errors"

var (
	ErrNotFound      = errors.New("poll not found")
	ErrInvalidOption = errors.New("option not found in this poll")
	ErrDuplicateVote = errors.New("already voted on this poll")
)

// ValidationError is malformed or out-of-range input. Msg is shown to the
// caller as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
