package summarylog

import "errors"

var (
	ErrNotFound          = errors.New("summary log not found")
	ErrDuplicate         = errors.New("summary log already exists")
	ErrStatusTransition  = errors.New("invalid summary log status transition")
	ErrProcessorStopped  = errors.New("summary log processor stopped")
	ErrProcessorSaturate = errors.New("summary log processor queue full")
)
