// Package repository holds the storage error vocabulary shared by every
// store implementation and the domain services that consume them.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with an existing row
	ErrConflict = errors.New("conflict: entity already exists")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
