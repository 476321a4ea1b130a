package store

import "errors"

var (
	// ErrNotFound means the referenced habit or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner means the requesting user does not own the habit.
	// Callers presenting errors to users should treat it as ErrNotFound
	// so other users' data existence is not leaked.
	ErrNotOwner = errors.New("not owner")

	// ErrValidation means the input to a mutation was malformed; nothing
	// was written.
	ErrValidation = errors.New("validation failed")
)
