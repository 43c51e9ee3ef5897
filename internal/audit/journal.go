// internal/audit/journal.go
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry kinds recorded by the loan service.
const (
	KindLoanOpened   = "loan.opened"
	KindLoanReturned = "loan.returned"
	KindFineAssessed = "fine.assessed"
	KindFineSettled  = "fine.settled"
)

// Entry is one append-only journal record. Detail carries kind-specific
// data as raw JSON.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	Kind       string          `json:"kind"`
	BookID     int             `json:"book_id"`
	LoanID     int             `json:"loan_id,omitempty"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Journal is an append-only trail of loan lifecycle entries. It is an
// observer of the domain, never a source of truth.
type Journal interface {
	Append(ctx context.Context, e Entry) error
	ByBook(ctx context.Context, bookID int) ([]Entry, error)
}

type memoryJournal struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryJournal creates an in-process journal.
func NewMemoryJournal() Journal {
	return &memoryJournal{}
}

func (j *memoryJournal) Append(ctx context.Context, e Entry) error {
	stamp(&e)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *memoryJournal) ByBook(ctx context.Context, bookID int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Entry
	for _, e := range j.entries {
		if e.BookID == bookID {
			out = append(out, e)
		}
	}
	return out, nil
}

func stamp(e *Entry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
}
