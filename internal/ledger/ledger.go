package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wasteworks/reclaim/internal/records"
	"github.com/wasteworks/reclaim/internal/registration"
)

// DefaultMaxAttempts bounds the optimistic-concurrency retry loop. Exceeding
// it surfaces ErrConflict instead of retrying indefinitely.
const DefaultMaxAttempts = 4

// EntityWasteRecord is the entity type linking a transaction to the waste
// record that produced it.
const EntityWasteRecord = "waste_record"

// ErrInsufficientBalance indicates a debit would spend more than the
// currently available amount.
var ErrInsufficientBalance = errors.New("insufficient available balance")

// Service posts transactions to waste balances. All writes run a bounded
// read-modify-append loop: on a version conflict the balance is re-read and
// the posting recomputed against the fresh totals.
type Service struct {
	store       Store
	logger      *slog.Logger
	maxAttempts int
}

// NewService creates a ledger service. maxAttempts <= 0 selects
// DefaultMaxAttempts.
func NewService(store Store, logger *slog.Logger, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Service{
		store:       store,
		logger:      logger.With("system", "ledger"),
		maxAttempts: maxAttempts,
	}
}

// Posting reports the transactions one record posted to a balance.
type Posting struct {
	AccreditationID uuid.UUID
	Transactions    []Transaction
}

// PostRecord derives a balance posting from a materialized waste record.
// Returns (nil, nil) when the record does not post: no extractor recognizes
// it, its fields are absent or invalid, or its dispatch date falls outside
// the accreditation window. A posting credits the extracted tonnage; when the
// row reports a note already issued against it, an offsetting debit posts in
// the same logical operation.
func (s *Service) PostRecord(
	ctx context.Context,
	rec *records.Record,
	accr *registration.Accreditation,
	createdBy string,
) (*Posting, error) {
	ext := Extract(rec)
	if ext == nil {
		return nil, nil
	}

	if !accr.Covers(ext.DispatchDate) {
		s.logger.Info("record outside accreditation window",
			"record_id", rec.ID,
			"dispatch_date", ext.DispatchDate.Format(time.DateOnly),
			"accreditation", accr.Number,
		)
		return nil, nil
	}

	entities := []EntityRef{{Type: EntityWasteRecord, ID: rec.ID}}

	posting := &Posting{AccreditationID: accr.ID}

	credit, err := s.Credit(ctx, rec.OrganisationID, accr.ID, ext.Amount, createdBy, entities)
	if err != nil {
		return nil, err
	}
	posting.Transactions = append(posting.Transactions, *credit)

	if ext.PRNIssued {
		debit, err := s.Debit(ctx, rec.OrganisationID, accr.ID, ext.Amount, createdBy, entities)
		if err != nil {
			return nil, err
		}
		posting.Transactions = append(posting.Transactions, *debit)
	}

	return posting, nil
}

// PostRecordUpdate posts the difference a corrected record makes to its
// balance. prior is the record's data before the correcting version was
// appended. A correction that leaves the posted tonnage unchanged, such as a
// fixed destination country, posts nothing; an increase credits the
// difference and a decrease debits it.
func (s *Service) PostRecordUpdate(
	ctx context.Context,
	rec *records.Record,
	prior map[string]any,
	accr *registration.Accreditation,
	createdBy string,
) (*Posting, error) {
	before := *rec
	before.Data = prior

	diff := s.netEffect(rec, accr).Sub(s.netEffect(&before, accr))
	if diff.IsZero() {
		return nil, nil
	}

	entities := []EntityRef{{Type: EntityWasteRecord, ID: rec.ID}}
	posting := &Posting{AccreditationID: accr.ID}

	var (
		tx  *Transaction
		err error
	)
	if diff.IsPositive() {
		tx, err = s.Credit(ctx, rec.OrganisationID, accr.ID, diff, createdBy, entities)
	} else {
		tx, err = s.Debit(ctx, rec.OrganisationID, accr.ID, diff.Neg(), createdBy, entities)
	}
	if err != nil {
		return nil, err
	}
	posting.Transactions = append(posting.Transactions, *tx)

	return posting, nil
}

// netEffect is the tonnage a record state contributes to its balance: the
// extracted amount when the state posts, zero when it does not post or when a
// recycling note was already issued against the row, since the credit and its
// offsetting debit cancel.
func (s *Service) netEffect(rec *records.Record, accr *registration.Accreditation) decimal.Decimal {
	ext := Extract(rec)
	if ext == nil || !accr.Covers(ext.DispatchDate) || ext.PRNIssued {
		return decimal.Zero
	}
	return ext.Amount
}

// Credit increases the balance amount and available amount.
func (s *Service) Credit(
	ctx context.Context,
	organisationID, accreditationID uuid.UUID,
	amount decimal.Decimal,
	createdBy string,
	entities []EntityRef,
) (*Transaction, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	return s.post(ctx, organisationID, accreditationID, func(bal *Balance) (*Transaction, error) {
		return newTransaction(bal, TypeCredit, amount, createdBy, entities,
			bal.Amount.Add(amount),
			bal.AvailableAmount.Add(amount),
		), nil
	})
}

// Debit decreases the balance amount and available amount.
func (s *Service) Debit(
	ctx context.Context,
	organisationID, accreditationID uuid.UUID,
	amount decimal.Decimal,
	createdBy string,
	entities []EntityRef,
) (*Transaction, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	return s.post(ctx, organisationID, accreditationID, func(bal *Balance) (*Transaction, error) {
		if bal.AvailableAmount.LessThan(amount) {
			return nil, fmt.Errorf("%w: available %s, debit %s",
				ErrInsufficientBalance, bal.AvailableAmount, amount)
		}
		return newTransaction(bal, TypeDebit, amount, createdBy, entities,
			bal.Amount.Sub(amount),
			bal.AvailableAmount.Sub(amount),
		), nil
	})
}

// PendingDebit reserves available amount without reducing the total amount
// until the pending debit resolves.
func (s *Service) PendingDebit(
	ctx context.Context,
	organisationID, accreditationID uuid.UUID,
	amount decimal.Decimal,
	createdBy string,
	entities []EntityRef,
) (*Transaction, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	return s.post(ctx, organisationID, accreditationID, func(bal *Balance) (*Transaction, error) {
		if bal.AvailableAmount.LessThan(amount) {
			return nil, fmt.Errorf("%w: available %s, pending debit %s",
				ErrInsufficientBalance, bal.AvailableAmount, amount)
		}
		return newTransaction(bal, TypePendingDebit, amount, createdBy, entities,
			bal.Amount,
			bal.AvailableAmount.Sub(amount),
		), nil
	})
}

// ResolvePendingDebit finalizes a pending debit: the total amount drops by
// the pending amount while the available amount, already reduced when the
// reservation posted, is untouched. The original pending transaction stays in
// the history unchanged; the resolving debit references it by entity.
func (s *Service) ResolvePendingDebit(
	ctx context.Context,
	organisationID, accreditationID, pendingID uuid.UUID,
	createdBy string,
) (*Transaction, error) {
	return s.post(ctx, organisationID, accreditationID, func(bal *Balance) (*Transaction, error) {
		pending, err := findPending(bal, pendingID)
		if err != nil {
			return nil, err
		}

		entities := []EntityRef{{Type: string(TypePendingDebit), ID: pending.ID}}
		return newTransaction(bal, TypeDebit, pending.Amount, createdBy, entities,
			bal.Amount.Sub(pending.Amount),
			bal.AvailableAmount,
		), nil
	})
}

// post runs the bounded optimistic-concurrency loop. A missing balance is
// created at zero first; a creation race falls through to a fresh read.
func (s *Service) post(
	ctx context.Context,
	organisationID, accreditationID uuid.UUID,
	build func(bal *Balance) (*Transaction, error),
) (*Transaction, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		bal, err := s.store.Get(ctx, accreditationID)
		if errors.Is(err, ErrBalanceNotFound) {
			bal = NewBalance(organisationID, accreditationID)
			if cerr := s.store.Create(ctx, bal); cerr != nil {
				if errors.Is(cerr, ErrBalanceExists) {
					continue
				}
				return nil, cerr
			}
		} else if err != nil {
			return nil, err
		}

		tx, err := build(bal)
		if err != nil {
			return nil, err
		}

		if err := s.store.Append(ctx, bal, *tx); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				s.logger.Warn("balance version conflict, retrying",
					"accreditation_id", accreditationID,
					"attempt", attempt,
				)
				continue
			}
			return nil, err
		}

		s.logger.Info("balance transaction posted",
			"accreditation_id", accreditationID,
			"type", tx.Type,
			"amount", tx.Amount,
			"closing_amount", tx.ClosingAmount,
		)
		return tx, nil
	}

	return nil, fmt.Errorf("%w: %d attempts", ErrConflict, s.maxAttempts)
}

func newTransaction(
	bal *Balance,
	txType TransactionType,
	amount decimal.Decimal,
	createdBy string,
	entities []EntityRef,
	closingAmount, closingAvailable decimal.Decimal,
) *Transaction {
	return &Transaction{
		ID:                     uuid.New(),
		Type:                   txType,
		CreatedAt:              time.Now().UTC(),
		CreatedBy:              createdBy,
		Amount:                 amount,
		OpeningAmount:          bal.Amount,
		ClosingAmount:          closingAmount,
		OpeningAvailableAmount: bal.AvailableAmount,
		ClosingAvailableAmount: closingAvailable,
		Entities:               entities,
	}
}

// findPending locates an unresolved pending debit on the balance.
func findPending(bal *Balance, pendingID uuid.UUID) (*Transaction, error) {
	var pending *Transaction
	for i := range bal.Transactions {
		tx := &bal.Transactions[i]
		if tx.ID == pendingID && tx.Type == TypePendingDebit {
			pending = tx
			break
		}
	}
	if pending == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, pendingID)
	}

	for _, tx := range bal.Transactions {
		if tx.Type != TypeDebit {
			continue
		}
		for _, e := range tx.Entities {
			if e.Type == string(TypePendingDebit) && e.ID == pendingID {
				return nil, fmt.Errorf("%w: %s already resolved", ErrTransactionNotFound, pendingID)
			}
		}
	}

	return pending, nil
}
