package project

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrUnauthorized indicates the actor may not perform the operation.
	ErrUnauthorized = errors.New("actor not permitted for this operation")
	// ErrInvalidState indicates the operation is not legal from the current status.
	ErrInvalidState = errors.New("operation not allowed in current project status")
	// ErrValidation indicates empty or malformed input.
	ErrValidation = errors.New("invalid project input")
)

// PersistenceError carries a store failure to the caller without
// interpreting it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
