package prompt

import "errors"

var (
	// ErrAborted signals the candidate aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrDriverExhausted signals a scripted driver ran out of answers; it
	// only occurs in tests.
	ErrDriverExhausted = errors.New("prompt: driver has no more answers")
)
