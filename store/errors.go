package store

import "errors"

var (
	// ErrNotFound is returned when a document with the given id doesn't exist.
	ErrNotFound = errors.New("catalog: document not found")

	// ErrAlreadyExists is returned when inserting a document whose id is taken.
	ErrAlreadyExists = errors.New("catalog: document already exists")

	// ErrDuplicateValue is returned when a unique constraint is violated.
	ErrDuplicateValue = errors.New("catalog: duplicate value for unique field")

	// ErrMissingID is returned when inserting a document without an "id" field.
	ErrMissingID = errors.New("catalog: document has no id")
)
