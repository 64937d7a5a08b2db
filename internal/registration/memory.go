package registration

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryOracle is an in-process Oracle backed by maps. Tests and the offline
// CLI seed it directly; the deployed service wires a client for the external
// registration API instead.
type MemoryOracle struct {
	mu             sync.RWMutex
	registrations  map[uuid.UUID]*Registration
	accreditations map[uuid.UUID]*Accreditation
}

// NewMemoryOracle creates an empty in-memory oracle.
func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{
		registrations:  make(map[uuid.UUID]*Registration),
		accreditations: make(map[uuid.UUID]*Accreditation),
	}
}

// AddRegistration seeds a registration (and its accreditation, if any).
func (m *MemoryOracle) AddRegistration(r *Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registrations[r.ID] = r
	if r.Accreditation != nil {
		m.accreditations[r.Accreditation.ID] = r.Accreditation
	}
}

func (m *MemoryOracle) Registration(_ context.Context, organisationID, registrationID uuid.UUID) (*Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.registrations[registrationID]
	if !ok || r.OrganisationID != organisationID {
		return nil, ErrRegistrationNotFound
	}
	return r, nil
}

func (m *MemoryOracle) Accreditation(_ context.Context, accreditationID uuid.UUID) (*Accreditation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accreditations[accreditationID]
	if !ok {
		return nil, ErrAccreditationNotFound
	}
	return a, nil
}
