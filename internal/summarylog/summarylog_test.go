package summarylog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/summarylog"
)

func TestStatusTransitions(t *testing.T) {
	all := []summarylog.Status{
		summarylog.StatusPreprocessing,
		summarylog.StatusValidating,
		summarylog.StatusValidated,
		summarylog.StatusInvalid,
		summarylog.StatusRejected,
	}

	allowed := map[summarylog.Status][]summarylog.Status{
		summarylog.StatusPreprocessing: {summarylog.StatusValidating},
		summarylog.StatusValidating: {
			summarylog.StatusValidated,
			summarylog.StatusInvalid,
			summarylog.StatusRejected,
		},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminals := map[summarylog.Status]bool{
		summarylog.StatusPreprocessing: false,
		summarylog.StatusValidating:    false,
		summarylog.StatusValidated:     true,
		summarylog.StatusInvalid:       true,
		summarylog.StatusRejected:      true,
	}
	for status, want := range terminals {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestNewStartsPreprocessing(t *testing.T) {
	doc := summarylog.New(uuid.New(), uuid.New(), nil, "uploads/a.xlsx", "a.xlsx")
	if doc.Status != summarylog.StatusPreprocessing {
		t.Errorf("status = %s, want preprocessing", doc.Status)
	}
	if doc.ID == uuid.Nil {
		t.Error("new document should carry an id")
	}
}

func TestMemoryStoreTransitionEnforcesLifecycle(t *testing.T) {
	store := summarylog.NewMemoryStore()
	ctx := context.Background()

	doc := summarylog.New(uuid.New(), uuid.New(), nil, "k", "f.xlsx")
	if err := store.Create(ctx, doc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Skipping validating is illegal.
	if _, err := store.Transition(ctx, doc.ID, summarylog.StatusValidated, nil); !errors.Is(err, summarylog.ErrStatusTransition) {
		t.Fatalf("preprocessing -> validated error = %v, want ErrStatusTransition", err)
	}

	if _, err := store.Transition(ctx, doc.ID, summarylog.StatusValidating, nil); err != nil {
		t.Fatalf("preprocessing -> validating: %v", err)
	}

	found := []issues.Issue{issues.Fatal(issues.CategoryTechnical, "WORKBOOK_CORRUPT", "unreadable")}
	updated, err := store.Transition(ctx, doc.ID, summarylog.StatusRejected, found)
	if err != nil {
		t.Fatalf("validating -> rejected: %v", err)
	}
	if len(updated.Issues) != 1 || updated.Issues[0].Code != "WORKBOOK_CORRUPT" {
		t.Errorf("issues = %v, want the rejection recorded", updated.Issues)
	}

	// Terminal statuses never move.
	if _, err := store.Transition(ctx, doc.ID, summarylog.StatusValidated, nil); !errors.Is(err, summarylog.ErrStatusTransition) {
		t.Errorf("rejected -> validated error = %v, want ErrStatusTransition", err)
	}
}

func TestMemoryStoreDuplicateCreate(t *testing.T) {
	store := summarylog.NewMemoryStore()
	doc := summarylog.New(uuid.New(), uuid.New(), nil, "k", "f.xlsx")

	if err := store.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(context.Background(), doc); !errors.Is(err, summarylog.ErrDuplicate) {
		t.Errorf("second Create error = %v, want ErrDuplicate", err)
	}
}

func TestMemoryStoreListPending(t *testing.T) {
	store := summarylog.NewMemoryStore()
	ctx := context.Background()

	docs := make([]*summarylog.SummaryLog, 3)
	for i := range docs {
		docs[i] = summarylog.New(uuid.New(), uuid.New(), nil, "k", "f.xlsx")
		docs[i].CreatedAt = time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC)
		if err := store.Create(ctx, docs[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	// An in-flight document is not pending.
	if _, err := store.Transition(ctx, docs[1].ID, summarylog.StatusValidating, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != docs[0].ID || pending[1].ID != docs[2].ID {
		t.Error("pending documents should come back oldest first")
	}

	limited, err := store.ListPending(ctx, 1)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != docs[0].ID {
		t.Errorf("limited = %v, want only the oldest", limited)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := summarylog.NewMemoryStore()
	if _, err := store.Get(context.Background(), uuid.New()); !errors.Is(err, summarylog.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
