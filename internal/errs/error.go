package errs

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrISBNExists = errors.New("isbn already registered")
	ErrBookLoaned = errors.New("Book already loaned")
	ErrActiveLoan = errors.New("book has an active loan")
	ErrInvalidID  = errors.New("entity id is required")
)

// ErrorList is the body of business-rule and validation failures.
type ErrorList struct {
	Errors []string `json:"errors"`
}

func NewErrorList(msgs ...string) ErrorList {
	return ErrorList{Errors: msgs}
}
