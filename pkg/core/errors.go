package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned when a note does not exist or cannot be read.
	ErrNotFound = errors.New("note not found")

	// ErrCorruptRecord is returned by repositories when a stored note cannot
	// be parsed. The Service never surfaces it: get reports ErrNotFound and
	// list skips the record.
	ErrCorruptRecord = errors.New("corrupt note record")

	// ErrExists is returned by Repository.Create when the id is already taken.
	ErrExists = errors.New("note already exists")
)
