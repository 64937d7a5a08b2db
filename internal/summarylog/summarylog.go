// Package summarylog owns the summary log document and the ingestion
// pipeline that moves it from upload to ledger posting. A summary log starts
// in preprocessing, enters validating when a worker picks it up, and lands on
// exactly one terminal status. Status never moves backwards.
package summarylog

import (
	"time"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/issues"
)

// Status is the lifecycle state of a summary log.
type Status string

const (
	// StatusPreprocessing marks an uploaded log awaiting a worker.
	StatusPreprocessing Status = "preprocessing"
	// StatusValidating marks a log a worker is currently running.
	StatusValidating Status = "validating"
	// StatusValidated marks a log whose content passed every validator.
	StatusValidated Status = "validated"
	// StatusInvalid marks a log that parsed but failed validation fatally.
	StatusInvalid Status = "invalid"
	// StatusRejected marks a log whose workbook could not be parsed at all.
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status admits no further transition.
func (s Status) Terminal() bool {
	switch s {
	case StatusValidated, StatusInvalid, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo enforces the one-way lifecycle. Terminal statuses accept
// nothing; preprocessing only advances to validating; validating advances to
// any terminal status.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPreprocessing:
		return next == StatusValidating
	case StatusValidating:
		return next.Terminal()
	}
	return false
}

// SummaryLog is the ingestion document for one uploaded workbook. FileKey
// references the workbook bytes in the upload store; the pipeline never
// carries file content on the document itself.
type SummaryLog struct {
	ID              uuid.UUID      `json:"id"`
	OrganisationID  uuid.UUID      `json:"organisation_id"`
	RegistrationID  uuid.UUID      `json:"registration_id"`
	AccreditationID *uuid.UUID     `json:"accreditation_id,omitempty"`
	FileKey         string         `json:"file_key"`
	FileName        string         `json:"file_name"`
	Status          Status         `json:"status"`
	Issues          []issues.Issue `json:"issues,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// New creates a summary log in preprocessing for an uploaded workbook.
func New(organisationID, registrationID uuid.UUID, accreditationID *uuid.UUID, fileKey, fileName string) *SummaryLog {
	now := time.Now().UTC()
	return &SummaryLog{
		ID:              uuid.New(),
		OrganisationID:  organisationID,
		RegistrationID:  registrationID,
		AccreditationID: accreditationID,
		FileKey:         fileKey,
		FileName:        fileName,
		Status:          StatusPreprocessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
