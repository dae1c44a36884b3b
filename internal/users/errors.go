package users

import "errors"

var (
	// ErrNotFound indicates the referenced user or token does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrConflict indicates another user already holds the name.
	ErrConflict = errors.New("user with name already exists")

	// ErrPersist indicates the in-memory change was applied but writing the
	// document failed. The store is ahead of its backing document until the
	// next successful write.
	ErrPersist = errors.New("persisting users failed")
)
