package records

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("records: not found")
	ErrConflict     = errors.New("records: conflict")
	ErrInvalidInput = errors.New("records: invalid input")
)

// Error carries a client facing message for one of the sentinel kinds.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

var (
	errNothingToUpdate   = newError(ErrInvalidInput, "Nothing to update")
	errSelfMentorReview  = newError(ErrInvalidInput, "A mentor review cannot be written about oneself")
	errAlreadyCheckedIn  = newError(ErrInvalidInput, "Already checked in today")
	errNoCheckIn         = newError(ErrInvalidInput, "No check-in found for today")
	errAlreadyCheckedOut = newError(ErrInvalidInput, "Already checked out today")
	errUserNotFound      = newError(ErrNotFound, "User not found")
)
