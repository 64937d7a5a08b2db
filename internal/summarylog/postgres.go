package summarylog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/pkg/repository"
)

// PostgresStore persists summary logs in the summary_logs table. The status
// lifecycle is enforced in the UPDATE predicate so concurrent workers cannot
// double-advance a document.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a summary log store over the given connection pool.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With("system", "summarylog.store"),
	}
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*SummaryLog, error) {
	const q = `
		SELECT id, organisation_id, registration_id, accreditation_id,
		       file_key, file_name, status, issues, created_at, updated_at
		FROM summary_logs
		WHERE id = $1`

	doc, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanSummaryLog)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &doc, nil
}

func (s *PostgresStore) Create(ctx context.Context, doc *SummaryLog) error {
	const q = `
		INSERT INTO summary_logs (
			id, organisation_id, registration_id, accreditation_id,
			file_key, file_name, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, q,
		doc.ID,
		doc.OrganisationID,
		doc.RegistrationID,
		doc.AccreditationID,
		doc.FileKey,
		doc.FileName,
		doc.Status,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *PostgresStore) ListPending(ctx context.Context, limit int) ([]*SummaryLog, error) {
	const q = `
		SELECT id, organisation_id, registration_id, accreditation_id,
		       file_key, file_name, status, issues, created_at, updated_at
		FROM summary_logs
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2`

	docs, err := repository.QueryMany(ctx, s.db, q, []any{StatusPreprocessing, limit}, scanSummaryLog)
	if err != nil {
		return nil, fmt.Errorf("query pending summary logs: %w", err)
	}

	out := make([]*SummaryLog, 0, len(docs))
	for i := range docs {
		out = append(out, &docs[i])
	}
	return out, nil
}

func (s *PostgresStore) Transition(ctx context.Context, id uuid.UUID, next Status, found []issues.Issue) (*SummaryLog, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrStatusTransition, current.Status, next)
	}

	var raw []byte
	if next.Terminal() && len(found) > 0 {
		if raw, err = json.Marshal(found); err != nil {
			return nil, fmt.Errorf("marshal issues: %w", err)
		}
	}

	const q = `
		UPDATE summary_logs
		SET status = $1, issues = COALESCE($2, issues), updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING id, organisation_id, registration_id, accreditation_id,
		          file_key, file_name, status, issues, created_at, updated_at`

	doc, err := repository.QueryOne(ctx, s.db, q,
		[]any{next, raw, time.Now().UTC(), id, current.Status}, scanSummaryLog)
	if err != nil {
		// A concurrent worker moved the document first.
		return nil, repository.MapError(err, ErrStatusTransition, ErrDuplicate)
	}
	return &doc, nil
}

func scanSummaryLog(sc repository.Scanner) (SummaryLog, error) {
	var (
		doc SummaryLog
		raw []byte
	)
	if err := sc.Scan(
		&doc.ID,
		&doc.OrganisationID,
		&doc.RegistrationID,
		&doc.AccreditationID,
		&doc.FileKey,
		&doc.FileName,
		&doc.Status,
		&raw,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return doc, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc.Issues); err != nil {
			return doc, fmt.Errorf("unmarshal issues: %w", err)
		}
	}
	return doc, nil
}
