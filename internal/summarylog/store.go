package summarylog

import (
	"context"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/issues"
)

// Store is the persistence port for summary log documents. Transition must
// enforce the status lifecycle: implementations reject moves the current
// status does not admit with ErrStatusTransition, and persist the issue set
// alongside terminal statuses so outcomes survive the run that produced them.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*SummaryLog, error)
	Create(ctx context.Context, log *SummaryLog) error
	ListPending(ctx context.Context, limit int) ([]*SummaryLog, error)
	Transition(ctx context.Context, id uuid.UUID, next Status, found []issues.Issue) (*SummaryLog, error)
}
