package errcodes

import (
	"fmt"
)

type Error struct {
	Message string
	Code    string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.Message == err.Message &&
		te.Code == err.Code
}

// Forbidden returns an error with a message indicating the action is
// forbidden.
func Forbidden(action string) error {
	return &Error{
		action + " is not allowed.",
		"forbidden",
	}
}

// NotFound returns an error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		resource + " not found.",
		"not_found",
	}
}

// ComicNotFound returns a not-found error naming the offending comic id.
func ComicNotFound(id int) error {
	return &Error{
		fmt.Sprintf("Comic with id %d not found.", id),
		"comic_not_found",
	}
}

// Validation returns an error for invalid input to a command operation.
func Validation(msg string) error {
	return &Error{
		msg,
		"validation",
	}
}
