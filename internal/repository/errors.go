// Package repository holds the error sentinels shared by every store
// implementation. Domain services translate these into their own sentinels
// at the service boundary.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist or is
	// soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness constraint over live rows
	// fails.
	ErrConflict = errors.New("conflict: entity already exists")

	// ErrForeignKeyViolation is returned when a referenced entity is missing.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput is returned when a store receives malformed input.
	ErrInvalidInput = errors.New("invalid input")
)
