package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/pkg/repository"
)

// PostgresStore persists balances in waste_balances and their histories in
// waste_balance_transactions. The version gate is the UPDATE predicate: a
// stale writer matches zero rows and the append rolls back untouched.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a balance store over the given connection pool.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With("system", "ledger.store"),
	}
}

func (s *PostgresStore) Get(ctx context.Context, accreditationID uuid.UUID) (*Balance, error) {
	const q = `
		SELECT organisation_id, accreditation_id, version, amount, available_amount
		FROM waste_balances
		WHERE accreditation_id = $1`

	bal, err := repository.QueryOne(ctx, s.db, q, []any{accreditationID}, scanBalance)
	if err != nil {
		return nil, repository.MapError(err, ErrBalanceNotFound, ErrBalanceExists)
	}

	const txq = `
		SELECT id, type, created_at, created_by, amount,
		       opening_amount, closing_amount,
		       opening_available_amount, closing_available_amount, entities
		FROM waste_balance_transactions
		WHERE accreditation_id = $1
		ORDER BY created_at, id`

	txs, err := repository.QueryMany(ctx, s.db, txq, []any{accreditationID}, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("query balance transactions: %w", err)
	}

	bal.Transactions = txs
	return &bal, nil
}

func (s *PostgresStore) Create(ctx context.Context, bal *Balance) error {
	const q = `
		INSERT INTO waste_balances (organisation_id, accreditation_id, version, amount, available_amount)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, q,
		bal.OrganisationID,
		bal.AccreditationID,
		bal.Version,
		bal.Amount,
		bal.AvailableAmount,
	)
	return repository.MapError(err, ErrBalanceNotFound, ErrBalanceExists)
}

func (s *PostgresStore) Append(ctx context.Context, bal *Balance, tx Transaction) error {
	const update = `
		UPDATE waste_balances
		SET version = version + 1, amount = $1, available_amount = $2
		WHERE accreditation_id = $3 AND version = $4`

	const insert = `
		INSERT INTO waste_balance_transactions (
			id, accreditation_id, type, created_at, created_by, amount,
			opening_amount, closing_amount,
			opening_available_amount, closing_available_amount, entities
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	entities, err := json.Marshal(tx.Entities)
	if err != nil {
		return fmt.Errorf("marshal transaction entities: %w", err)
	}

	_, err = repository.WithTx(ctx, s.db, func(dbtx *sql.Tx) (struct{}, error) {
		res, err := dbtx.ExecContext(ctx, update,
			tx.ClosingAmount,
			tx.ClosingAvailableAmount,
			bal.AccreditationID,
			bal.Version,
		)
		if err != nil {
			return struct{}{}, fmt.Errorf("update balance: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return struct{}{}, err
		}
		if rows == 0 {
			return struct{}{}, ErrVersionConflict
		}

		if _, err := dbtx.ExecContext(ctx, insert,
			tx.ID,
			bal.AccreditationID,
			tx.Type,
			tx.CreatedAt,
			tx.CreatedBy,
			tx.Amount,
			tx.OpeningAmount,
			tx.ClosingAmount,
			tx.OpeningAvailableAmount,
			tx.ClosingAvailableAmount,
			entities,
		); err != nil {
			return struct{}{}, fmt.Errorf("insert balance transaction: %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil && repository.IsSerializationFailure(err) {
		return ErrVersionConflict
	}
	return err
}

func scanBalance(sc repository.Scanner) (Balance, error) {
	var b Balance
	err := sc.Scan(
		&b.OrganisationID,
		&b.AccreditationID,
		&b.Version,
		&b.Amount,
		&b.AvailableAmount,
	)
	return b, err
}

func scanTransaction(sc repository.Scanner) (Transaction, error) {
	var (
		t   Transaction
		raw []byte
	)
	if err := sc.Scan(
		&t.ID,
		&t.Type,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.Amount,
		&t.OpeningAmount,
		&t.ClosingAmount,
		&t.OpeningAvailableAmount,
		&t.ClosingAvailableAmount,
		&raw,
	); err != nil {
		return t, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &t.Entities); err != nil {
			return t, fmt.Errorf("unmarshal transaction entities: %w", err)
		}
	}
	return t, nil
}
