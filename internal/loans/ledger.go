// internal/loans/ledger.go
package loans

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger owns the loan records. Open loans are the active set; closing a
// loan stamps its return date and drops it from that set.
type Ledger interface {
	Open(ctx context.Context, bookID int, loanedAt, dueAt time.Time, periodDays int) (*Loan, error)
	FindOpenByBookID(ctx context.Context, bookID int) (*Loan, error)
	Close(ctx context.Context, loanID int, returnedAt time.Time, fine decimal.Decimal) error
	ListOpen(ctx context.Context) ([]*Loan, error)
}

// memoryLedger keeps loans in insertion order and owns its monotonic ID
// counter.
type memoryLedger struct {
	mu     sync.RWMutex
	loans  []*Loan
	nextID int
}

// NewLedger creates an in-memory loan ledger.
func NewLedger() Ledger {
	return &memoryLedger{nextID: 1}
}

func (m *memoryLedger) Open(ctx context.Context, bookID int, loanedAt, dueAt time.Time, periodDays int) (*Loan, error) {
	if periodDays <= 0 || periodDays > MaxPeriodDays {
		return nil, ErrInvalidPeriod
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findOpenLocked(bookID) != nil {
		return nil, ErrAlreadyLoaned
	}

	loan := &Loan{
		ID:         m.nextID,
		BookID:     bookID,
		LoanedAt:   loanedAt,
		DueAt:      dueAt,
		PeriodDays: periodDays,
		Fine:       decimal.Zero,
	}
	m.nextID++
	m.loans = append(m.loans, loan)

	return copyLoan(loan), nil
}

func (m *memoryLedger) FindOpenByBookID(ctx context.Context, bookID int) (*Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loan := m.findOpenLocked(bookID)
	if loan == nil {
		return nil, ErrNoOpenLoan
	}
	return copyLoan(loan), nil
}

func (m *memoryLedger) Close(ctx context.Context, loanID int, returnedAt time.Time, fine decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, loan := range m.loans {
		if loan.ID != loanID {
			continue
		}
		if !loan.Open() {
			return ErrNoOpenLoan
		}
		if err := loan.SetFine(fine); err != nil {
			return err
		}
		t := returnedAt
		loan.ReturnedAt = &t
		return nil
	}
	return ErrNoOpenLoan
}

func (m *memoryLedger) ListOpen(ctx context.Context) ([]*Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	open := make([]*Loan, 0, len(m.loans))
	for _, loan := range m.loans {
		if loan.Open() {
			open = append(open, copyLoan(loan))
		}
	}
	return open, nil
}

func (m *memoryLedger) findOpenLocked(bookID int) *Loan {
	for _, loan := range m.loans {
		if loan.BookID == bookID && loan.Open() {
			return loan
		}
	}
	return nil
}

func copyLoan(l *Loan) *Loan {
	dup := *l
	if l.ReturnedAt != nil {
		t := *l.ReturnedAt
		dup.ReturnedAt = &t
	}
	return &dup
}
