package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	// ErrNoChange is returned by guarded set mutations whose guard did not match.
	ErrNoChange = errors.New("no change")
)

// StoreError wraps a persistence failure. Its message is never shown to clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
