package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicatePlantName is returned when a user already owns a plant with
	// the same name (compared case-insensitively)
	ErrDuplicatePlantName = errors.New("plant with this name already exists")
)
