package auth

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrExpiredToken       = errors.New("auth: token has expired")
	ErrMalformedToken     = errors.New("auth: invalid token")
	ErrIdentityNotFound   = errors.New("auth: identity not found")
	ErrDuplicateEmail     = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrAccessDenied       = errors.New("auth: access denied")
	ErrInvalidInput       = errors.New("auth: invalid input")
)

// DenialError is returned by Authorize and names the rule that produced the decision.
type DenialError struct {
	Action Action
	Rule   string
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("%v: %s (%s)", ErrAccessDenied, e.Action, e.Rule)
}

func (e *DenialError) Unwrap() error { return ErrAccessDenied }
