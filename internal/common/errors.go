// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")
	ErrCorrupt  = errors.New("stored value corrupted")

	// Classification errors.
	ErrClassificationFailed = errors.New("classification failed")

	// Application state errors.
	ErrSetupIncomplete = errors.New("setup not complete")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
// Key is the localization key of the message; UserMessage is the
// already-rendered text, if any.
type UserError struct {
	Err         error
	Key         string
	UserMessage string
}

func (e *UserError) Error() string {
	msg := e.UserMessage
	if msg == "" {
		msg = e.Key
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// NewLocalizedError creates a user-facing error identified by a localization key.
func NewLocalizedError(key string, err error) error {
	return &UserError{
		Key: key,
		Err: err,
	}
}

// UserErrorKey returns the localization key carried by err, or fallback when
// err is not a UserError or carries no key.
func UserErrorKey(err error, fallback string) string {
	var userErr *UserError
	if errors.As(err, &userErr) && userErr.Key != "" {
		return userErr.Key
	}
	return fallback
}
