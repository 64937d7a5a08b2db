package ledger

import "errors"

// Domain errors for ledger operations.
var (
	// ErrBalanceNotFound indicates no balance document exists for the accreditation.
	ErrBalanceNotFound = errors.New("waste balance not found")
	// ErrBalanceExists indicates a balance was already created for the accreditation.
	ErrBalanceExists = errors.New("waste balance already exists")
	// ErrVersionConflict indicates a write presented a stale version and must
	// be retried after a fresh read.
	ErrVersionConflict = errors.New("waste balance version conflict")
	// ErrConflict indicates the bounded retry budget was exhausted without an
	// accepted write.
	ErrConflict = errors.New("waste balance write conflict not resolved")
	// ErrNegativeAmount indicates a posting with a negative tonnage amount.
	ErrNegativeAmount = errors.New("transaction amount must not be negative")
	// ErrTransactionNotFound indicates a referenced transaction does not exist
	// on the balance.
	ErrTransactionNotFound = errors.New("balance transaction not found")
)
