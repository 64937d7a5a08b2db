// Package records implements versioned waste records: the durable, append-only
// materialization of accepted summary-log rows. A record is identified by its
// registration, record type, and row id; resubmissions of the same row append
// a new version only when the reported data actually changed.
package records

import (
	"time"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/validation"
)

// Type classifies what a waste record reports.
type Type string

const (
	TypeReceived  Type = "received"
	TypeProcessed Type = "processed"
	TypeSentOn    Type = "sentOn"
	TypeExported  Type = "exported"
)

// VersionStatus is the lifecycle state of one record version.
type VersionStatus string

const (
	// StatusCreated marks the first version of a record.
	StatusCreated VersionStatus = "created"
	// StatusUpdated marks a version holding only the fields that changed.
	StatusUpdated VersionStatus = "updated"
	// StatusPending marks data that must not affect ledger postings until an
	// explicit promotion step finalizes it.
	StatusPending VersionStatus = "pending"
)

// Finalized reports whether a version contributes to the record's projected
// data and may drive ledger postings.
func (s VersionStatus) Finalized() bool {
	return s == StatusCreated || s == StatusUpdated
}

// CanTransitionTo reports whether a status change is legal. Finalized
// statuses never change; only promotion out of pending is permitted.
func (s VersionStatus) CanTransitionTo(next VersionStatus) bool {
	return s == StatusPending && next.Finalized()
}

// Version is one append-only entry in a record's history.
type Version struct {
	ID           uuid.UUID      `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	Status       VersionStatus  `json:"status"`
	SummaryLogID uuid.UUID      `json:"summary_log_id"`
	Data         map[string]any `json:"data"`
}

// Key is the full identity of a waste record.
type Key struct {
	OrganisationID uuid.UUID
	RegistrationID uuid.UUID
	Type           Type
	RowID          int64
}

// Record is a versioned waste record. Data is a projection folded from the
// finalized versions in order; pending versions are excluded from it.
type Record struct {
	ID              uuid.UUID      `json:"id"`
	OrganisationID  uuid.UUID      `json:"organisation_id"`
	RegistrationID  uuid.UUID      `json:"registration_id"`
	AccreditationID *uuid.UUID     `json:"accreditation_id,omitempty"`
	RowID           int64          `json:"row_id"`
	Type            Type           `json:"type"`
	Data            map[string]any `json:"data"`
	Versions        []Version      `json:"versions"`
}

// Key returns the record's identity.
func (r *Record) Key() Key {
	return Key{
		OrganisationID: r.OrganisationID,
		RegistrationID: r.RegistrationID,
		Type:           r.Type,
		RowID:          r.RowID,
	}
}

// LatestFinalized returns the most recent non-pending version, or nil when
// every version is pending.
func (r *Record) LatestFinalized() *Version {
	for i := len(r.Versions) - 1; i >= 0; i-- {
		if r.Versions[i].Status.Finalized() {
			return &r.Versions[i]
		}
	}
	return nil
}

// AppendVersion appends a version and refreshes the data projection.
func (r *Record) AppendVersion(v Version) {
	r.Versions = append(r.Versions, v)
	r.Data = r.Project()
}

// Project folds the finalized versions into the record's current data.
func (r *Record) Project() map[string]any {
	data := make(map[string]any)
	for _, v := range r.Versions {
		if !v.Status.Finalized() {
			continue
		}
		for field, value := range v.Data {
			data[field] = value
		}
	}
	return data
}

// FieldChanged reports whether two reported field values differ. Numeric
// values compare by exact decimal equality so a value surviving a storage
// round-trip (int64 in, float64 out) does not read as a change.
func FieldChanged(prev, next any) bool {
	if prev == nil && next == nil {
		return false
	}
	if prev == nil || next == nil {
		return true
	}

	pd, pok := validation.AsDecimal(prev)
	nd, nok := validation.AsDecimal(next)
	if pok && nok {
		return !pd.Equal(nd)
	}

	return validation.AsString(prev) != validation.AsString(next)
}
