package summarylog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/issues"
)

// MemoryStore is an in-memory Store for tests and the CLI.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]*SummaryLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[uuid.UUID]*SummaryLog)}
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*SummaryLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneLog(doc), nil
}

func (s *MemoryStore) Create(_ context.Context, doc *SummaryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[doc.ID]; ok {
		return ErrDuplicate
	}
	s.logs[doc.ID] = cloneLog(doc)
	return nil
}

func (s *MemoryStore) ListPending(_ context.Context, limit int) ([]*SummaryLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SummaryLog
	for _, doc := range s.logs {
		if doc.Status != StatusPreprocessing {
			continue
		}
		out = append(out, cloneLog(doc))
		if limit > 0 && len(out) == limit {
			break
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Transition(_ context.Context, id uuid.UUID, next Status, found []issues.Issue) (*SummaryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !doc.Status.CanTransitionTo(next) {
		return nil, ErrStatusTransition
	}

	doc.Status = next
	doc.UpdatedAt = time.Now().UTC()
	if next.Terminal() {
		doc.Issues = append([]issues.Issue(nil), found...)
	}
	return cloneLog(doc), nil
}

func cloneLog(doc *SummaryLog) *SummaryLog {
	out := *doc
	out.Issues = append([]issues.Issue(nil), doc.Issues...)
	return &out
}
