package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Store is the waste balance persistence port. Append is the only mutation
// after creation and it is version-gated: the caller passes the balance as it
// read it, and the store must reject the write with ErrVersionConflict when
// the stored version no longer matches. An accepted append adds the
// transaction, adopts its closing totals as the new balance totals, and
// increments the version by exactly one.
type Store interface {
	// Get returns the balance with its full transaction history.
	// Returns ErrBalanceNotFound when none exists for the accreditation.
	Get(ctx context.Context, accreditationID uuid.UUID) (*Balance, error)
	// Create persists a new zero balance. Returns ErrBalanceExists when a
	// balance was already created for the accreditation.
	Create(ctx context.Context, bal *Balance) error
	// Append writes one transaction under the version presented on bal.
	Append(ctx context.Context, bal *Balance, tx Transaction) error
}
