// Package registration defines the read-only registration oracle the pipeline
// consults. Registration and accreditation records are owned by an external
// service; this package carries only the projection the validators and ledger
// need, plus an in-memory oracle for tests and offline tooling.
package registration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Material is the canonical material code an organisation is registered for.
type Material string

const (
	MaterialAluminium Material = "AL"
	MaterialGlass     Material = "GL"
	MaterialPaper     Material = "PB"
	MaterialPlastic   Material = "PL"
	MaterialSteel     Material = "ST"
	MaterialWood      Material = "WD"
)

// Accreditation is a time-bounded authorisation to issue recycling notes for
// a material. Dispatch dates outside [ValidFrom, ValidTo] never post to the
// waste balance.
type Accreditation struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
}

// Covers reports whether the accreditation window includes the given date,
// inclusive at both ends.
func (a Accreditation) Covers(date time.Time) bool {
	return !date.Before(a.ValidFrom) && !date.After(a.ValidTo)
}

// Registration is the external record a summary log is validated against.
// Accreditation is nil for registrations without one; the accreditation-number
// business check only runs when it is present.
type Registration struct {
	ID                 uuid.UUID      `json:"id"`
	OrganisationID     uuid.UUID      `json:"organisation_id"`
	RegistrationNumber string         `json:"registration_number"`
	Material           Material       `json:"material"`
	ProcessingType     string         `json:"processing_type"`
	Accreditation      *Accreditation `json:"accreditation,omitempty"`
}

// Oracle errors.
var (
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrAccreditationNotFound = errors.New("accreditation not found")
)

// Oracle is the read-only lookup port onto the external registration service.
type Oracle interface {
	Registration(ctx context.Context, organisationID, registrationID uuid.UUID) (*Registration, error)
	Accreditation(ctx context.Context, accreditationID uuid.UUID) (*Accreditation, error)
}
