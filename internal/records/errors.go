package records

import "errors"

// Domain errors for waste record operations.
var (
	ErrTableNotRegistered = errors.New("table has no registry entry")
	ErrInvalidRowID       = errors.New("row id is not an integer")
	ErrNotFound           = errors.New("waste record not found")
	ErrDuplicate          = errors.New("waste record already exists")
)
