package scraping

import (
	"fmt"
)

// Error is the single failure kind surfaced by scraping adaptors.
// Configuration problems (a missing API key) and remote problems (network
// failures, bad payloads) share it and are distinguished only by message and
// wrapped cause, which keeps retry policy out of the core.
type Error struct {
	Source  string
	Message string
	Err     error
}

func (err *Error) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("%s: %s: %v", err.Source, err.Message, err.Err)
	}
	return fmt.Sprintf("%s: %s", err.Source, err.Message)
}

func (err *Error) Unwrap() error {
	return err.Err
}

// NewError returns a scraping error for the given source.
func NewError(source string, message string) *Error {
	return &Error{Source: source, Message: message}
}

// WrapError returns a scraping error wrapping an underlying cause.
func WrapError(source string, message string, cause error) *Error {
	return &Error{Source: source, Message: message, Err: cause}
}
