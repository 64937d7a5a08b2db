package database

import "errors"

// ErrNotReady indicates the database connection has not yet been established.
var ErrNotReady = errors.New("database not ready")
