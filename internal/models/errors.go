package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUsername is returned when the username is already taken,
	// whether caught by the pre-check or by the unique constraint on insert.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// credential.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed input field.
// It is raised before the store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StoreError wraps a failure from the database. Err is the driver error as
// returned; callers may inspect it with errors.As.
type StoreError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *StoreError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("store %s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err is or wraps a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
