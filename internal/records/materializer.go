package records

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/validation"
)

// Submission identifies one validated summary log and carries the rows the
// data validator accepted for it.
type Submission struct {
	OrganisationID  uuid.UUID
	RegistrationID  uuid.UUID
	AccreditationID *uuid.UUID
	SummaryLogID    uuid.UUID
	Tables          map[string]validation.TableResult
}

// Materialized reports one version appended during a materialization run.
// The ledger posts from these. Prior holds the record's projection before
// the version was appended, so updated versions can be posted as the
// difference between the old and new state; it is nil for created versions.
type Materialized struct {
	Record  *Record
	Version Version
	Prior   map[string]any
}

// Materializer turns accepted rows into versioned waste records.
type Materializer struct {
	store  Store
	logger *slog.Logger
}

// NewMaterializer creates a materializer over the given store.
func NewMaterializer(store Store, logger *slog.Logger) *Materializer {
	return &Materializer{
		store:  store,
		logger: logger.With("system", "records"),
	}
}

// Materialize processes every INCLUDED row of the submission. New row
// identities append a created version holding the full payload; known
// identities whose data differs from the latest finalized version append an
// updated version holding only the changed fields; unchanged rows append
// nothing. Returns the versions appended in this run.
func (m *Materializer) Materialize(ctx context.Context, sub Submission) ([]Materialized, error) {
	existing, err := m.store.FindByRegistration(ctx, sub.OrganisationID, sub.RegistrationID)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}

	byKey := make(map[Key]*Record, len(existing))
	for _, r := range existing {
		byKey[r.Key()] = r
	}

	var (
		appended []Materialized
		changed  []*Record
	)

	for _, table := range sortedTableNames(sub.Tables) {
		entry, err := Registry(table)
		if err != nil {
			return nil, err
		}

		for _, row := range sub.Tables[table].Included() {
			rowID, err := rowIdentity(row, entry)
			if err != nil {
				return nil, fmt.Errorf("table %s row %d: %w", table, row.Index+1, err)
			}

			key := Key{
				OrganisationID: sub.OrganisationID,
				RegistrationID: sub.RegistrationID,
				Type:           entry.Type,
				RowID:          rowID,
			}

			rec, version, prior := m.materializeRow(byKey[key], key, sub, row)
			if version == nil {
				continue
			}

			byKey[key] = rec
			changed = append(changed, rec)
			appended = append(appended, Materialized{Record: rec, Version: *version, Prior: prior})
		}
	}

	if len(changed) == 0 {
		return nil, nil
	}

	if err := m.store.Upsert(ctx, changed); err != nil {
		return nil, fmt.Errorf("upsert records: %w", err)
	}

	m.logger.Info("summary log materialized",
		"summary_log_id", sub.SummaryLogID,
		"versions_appended", len(appended),
	)

	return appended, nil
}

// materializeRow decides what version, if any, the row appends. For updated
// versions it also returns the projection the record held before the append.
func (m *Materializer) materializeRow(rec *Record, key Key, sub Submission, row validation.Row) (*Record, *Version, map[string]any) {
	payload := clonePayload(row.Fields)

	if rec == nil {
		rec = &Record{
			ID:              uuid.New(),
			OrganisationID:  key.OrganisationID,
			RegistrationID:  key.RegistrationID,
			AccreditationID: sub.AccreditationID,
			RowID:           key.RowID,
			Type:            key.Type,
		}
		v := Version{
			ID:           uuid.New(),
			CreatedAt:    time.Now().UTC(),
			Status:       StatusCreated,
			SummaryLogID: sub.SummaryLogID,
			Data:         payload,
		}
		rec.AppendVersion(v)
		return rec, &v, nil
	}

	prior := rec.Project()
	delta := diffPayload(prior, payload)
	if len(delta) == 0 {
		return rec, nil, nil
	}

	v := Version{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Status:       StatusUpdated,
		SummaryLogID: sub.SummaryLogID,
		Data:         delta,
	}
	rec.AppendVersion(v)
	return rec, &v, prior
}

// diffPayload returns the fields of next whose values differ from base.
func diffPayload(base, next map[string]any) map[string]any {
	delta := make(map[string]any)
	for field, value := range next {
		if FieldChanged(base[field], value) {
			delta[field] = value
		}
	}
	return delta
}

func rowIdentity(row validation.Row, entry RegistryEntry) (int64, error) {
	value := row.Fields[entry.RowIDField]
	id, ok := value.(int64)
	if !ok {
		d, dok := validation.AsDecimal(value)
		if !dok || !d.IsInteger() {
			return 0, fmt.Errorf("%w: %s=%v", ErrInvalidRowID, entry.RowIDField, value)
		}
		return d.IntPart(), nil
	}
	return id, nil
}

func clonePayload(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func sortedTableNames(tables map[string]validation.TableResult) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
