// Package ledger implements the per-accreditation waste balance: an
// append-only transaction history with running amount and available-amount
// totals, written under optimistic concurrency. All amount arithmetic uses
// exact decimals; floating point never touches a balance.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a balance transaction.
type TransactionType string

const (
	// TypeCredit increases both amount and available amount.
	TypeCredit TransactionType = "credit"
	// TypeDebit decreases both amount and available amount.
	TypeDebit TransactionType = "debit"
	// TypePendingDebit reserves available amount without reducing the total
	// until the pending debit resolves.
	TypePendingDebit TransactionType = "pending_debit"
)

// EntityRef ties a transaction to the domain entity that caused it.
type EntityRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// Transaction is one immutable ledger entry. Opening and closing snapshots
// record the balance totals around the posting; once appended a transaction
// is never edited or removed.
type Transaction struct {
	ID                     uuid.UUID       `json:"id"`
	Type                   TransactionType `json:"type"`
	CreatedAt              time.Time       `json:"created_at"`
	CreatedBy              string          `json:"created_by"`
	Amount                 decimal.Decimal `json:"amount"`
	OpeningAmount          decimal.Decimal `json:"opening_amount"`
	ClosingAmount          decimal.Decimal `json:"closing_amount"`
	OpeningAvailableAmount decimal.Decimal `json:"opening_available_amount"`
	ClosingAvailableAmount decimal.Decimal `json:"closing_available_amount"`
	Entities               []EntityRef     `json:"entities,omitempty"`
}

// Balance is the waste balance document for one accreditation. Version gates
// every write: a writer presents the version it read, and the store rejects
// the write if the stored version has moved on.
type Balance struct {
	OrganisationID  uuid.UUID       `json:"organisation_id"`
	AccreditationID uuid.UUID       `json:"accreditation_id"`
	Version         int64           `json:"version"`
	Amount          decimal.Decimal `json:"amount"`
	AvailableAmount decimal.Decimal `json:"available_amount"`
	Transactions    []Transaction   `json:"transactions"`
}

// NewBalance creates a zero balance for an accreditation.
func NewBalance(organisationID, accreditationID uuid.UUID) *Balance {
	return &Balance{
		OrganisationID:  organisationID,
		AccreditationID: accreditationID,
		Version:         1,
		Amount:          decimal.Zero,
		AvailableAmount: decimal.Zero,
	}
}
