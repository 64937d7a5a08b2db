package storage

import "errors"

var (
	// ErrNotFound indicates the requested workbook blob does not exist.
	ErrNotFound = errors.New("workbook not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrTooLarge indicates an upload exceeded the configured size cap.
	ErrTooLarge = errors.New("upload exceeds maximum size")
)
