package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/pkg/repository"
)

// PostgresStore persists waste records in waste_records and their histories
// in waste_record_versions. Each record upserts inside its own transaction,
// giving the per-row-identity atomicity overlapping submissions require.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a record store over the given connection pool.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With("system", "records.store"),
	}
}

func (s *PostgresStore) FindByRegistration(ctx context.Context, organisationID, registrationID uuid.UUID) ([]*Record, error) {
	const q = `
		SELECT id, organisation_id, registration_id, accreditation_id, row_id, type
		FROM waste_records
		WHERE organisation_id = $1 AND registration_id = $2
		ORDER BY type, row_id`

	recs, err := repository.QueryMany(ctx, s.db, q, []any{organisationID, registrationID}, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query waste records: %w", err)
	}

	out := make([]*Record, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		if err := s.loadVersions(ctx, rec); err != nil {
			return nil, err
		}
		rec.Data = rec.Project()
		out = append(out, rec)
	}

	return out, nil
}

func (s *PostgresStore) loadVersions(ctx context.Context, rec *Record) error {
	const q = `
		SELECT id, created_at, status, summary_log_id, data
		FROM waste_record_versions
		WHERE record_id = $1
		ORDER BY created_at, id`

	versions, err := repository.QueryMany(ctx, s.db, q, []any{rec.ID}, scanVersion)
	if err != nil {
		return fmt.Errorf("query record versions: %w", err)
	}

	rec.Versions = versions
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, recs []*Record) error {
	for _, rec := range recs {
		if err := s.upsertOne(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// upsertOne writes one record and any versions the database has not yet seen.
// The ON CONFLICT arm resolves the surviving record id when another
// submission created the row first.
func (s *PostgresStore) upsertOne(ctx context.Context, rec *Record) error {
	const insertRecord = `
		INSERT INTO waste_records (id, organisation_id, registration_id, accreditation_id, row_id, type, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (organisation_id, registration_id, type, row_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		RETURNING id`

	const insertVersion = `
		INSERT INTO waste_record_versions (id, record_id, created_at, status, summary_log_id, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal record data: %w", err)
	}

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		var recordID uuid.UUID
		err := tx.QueryRowContext(ctx, insertRecord,
			rec.ID,
			rec.OrganisationID,
			rec.RegistrationID,
			rec.AccreditationID,
			rec.RowID,
			rec.Type,
			data,
		).Scan(&recordID)
		if err != nil {
			return struct{}{}, fmt.Errorf("upsert waste record: %w", err)
		}

		for _, v := range rec.Versions {
			vdata, err := json.Marshal(v.Data)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshal version data: %w", err)
			}
			if _, err := tx.ExecContext(ctx, insertVersion,
				v.ID, recordID, v.CreatedAt, v.Status, v.SummaryLogID, vdata,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert record version: %w", err)
			}
		}

		return struct{}{}, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

func scanRecord(sc repository.Scanner) (Record, error) {
	var r Record
	err := sc.Scan(
		&r.ID,
		&r.OrganisationID,
		&r.RegistrationID,
		&r.AccreditationID,
		&r.RowID,
		&r.Type,
	)
	return r, err
}

func scanVersion(sc repository.Scanner) (Version, error) {
	var (
		v   Version
		raw []byte
	)
	if err := sc.Scan(&v.ID, &v.CreatedAt, &v.Status, &v.SummaryLogID, &raw); err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v.Data); err != nil {
		return v, fmt.Errorf("unmarshal version data: %w", err)
	}
	return v, nil
}
