package repository

import "errors"

var (
	// ErrNotFound is returned by mutating operations that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrUniqueViolation is returned when an insert loses against a
	// storage-level unique constraint (duplicate email, concurrent code
	// creation for the same user).
	ErrUniqueViolation = errors.New("unique constraint violation")
)
