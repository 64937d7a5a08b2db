package records

import (
	"context"

	"github.com/google/uuid"
)

// Store is the waste record persistence port. Upsert must be atomic per row
// identity, not per call: overlapping submissions for the same registration
// interleave at row granularity without clobbering each other's rows.
type Store interface {
	// FindByRegistration returns every record for the registration, each with
	// its full version history in append order.
	FindByRegistration(ctx context.Context, organisationID, registrationID uuid.UUID) ([]*Record, error)
	// Upsert persists the given records and their newly appended versions.
	Upsert(ctx context.Context, recs []*Record) error
}
