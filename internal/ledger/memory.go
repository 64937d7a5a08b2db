package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process balance store used by tests and the offline
// CLI. It enforces the same version gate as the Postgres store.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]*Balance
}

// NewMemoryStore creates an empty in-memory balance store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[uuid.UUID]*Balance)}
}

func (m *MemoryStore) Get(_ context.Context, accreditationID uuid.UUID) (*Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bal, ok := m.balances[accreditationID]
	if !ok {
		return nil, ErrBalanceNotFound
	}
	return cloneBalance(bal), nil
}

func (m *MemoryStore) Create(_ context.Context, bal *Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.balances[bal.AccreditationID]; ok {
		return ErrBalanceExists
	}
	m.balances[bal.AccreditationID] = cloneBalance(bal)
	return nil
}

func (m *MemoryStore) Append(_ context.Context, bal *Balance, tx Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.balances[bal.AccreditationID]
	if !ok {
		return ErrBalanceNotFound
	}
	if stored.Version != bal.Version {
		return ErrVersionConflict
	}

	stored.Transactions = append(stored.Transactions, tx)
	stored.Amount = tx.ClosingAmount
	stored.AvailableAmount = tx.ClosingAvailableAmount
	stored.Version++
	return nil
}

func cloneBalance(bal *Balance) *Balance {
	out := *bal
	out.Transactions = append([]Transaction(nil), bal.Transactions...)
	return &out
}
