package records

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and the offline CLI.
// Like the Postgres store, writes land per row identity: concurrent upserts
// for different rows of the same registration never clobber each other.
type MemoryStore struct {
	mu      sync.Mutex
	records map[Key]*Record
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key]*Record)}
}

func (m *MemoryStore) FindByRegistration(_ context.Context, organisationID, registrationID uuid.UUID) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*Record
	for key, rec := range m.records {
		if key.OrganisationID == organisationID && key.RegistrationID == registrationID {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (m *MemoryStore) Upsert(_ context.Context, recs []*Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range recs {
		key := rec.Key()
		existing, ok := m.records[key]
		if !ok {
			m.records[key] = cloneRecord(rec)
			continue
		}

		// Append only versions the stored record has not seen; existing
		// versions are immutable.
		seen := make(map[uuid.UUID]bool, len(existing.Versions))
		for _, v := range existing.Versions {
			seen[v.ID] = true
		}
		for _, v := range rec.Versions {
			if !seen[v.ID] {
				existing.Versions = append(existing.Versions, v)
			}
		}
		existing.Data = existing.Project()
	}
	return nil
}

// Count returns the number of stored records.
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func cloneRecord(rec *Record) *Record {
	out := *rec
	out.Versions = make([]Version, len(rec.Versions))
	for i, v := range rec.Versions {
		nv := v
		nv.Data = clonePayload(v.Data)
		out.Versions[i] = nv
	}
	out.Data = out.Project()
	return &out
}
