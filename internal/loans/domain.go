// internal/loans/domain.go
package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPeriod = errors.New("loan period must be between 1 and 365 days")
	ErrAlreadyLoaned = errors.New("book is already on loan")
	ErrNotLoaned     = errors.New("book is not on loan")
	ErrNoOpenLoan    = errors.New("no open loan for this book")
	ErrNegativeFine  = errors.New("fine cannot be negative")
)

// MaxPeriodDays caps the agreed return period.
const MaxPeriodDays = 365

// Loan is a ledger record. ReturnedAt is nil while the loan is open;
// at most one open loan exists per book at any time.
type Loan struct {
	ID         int             `json:"id"`
	BookID     int             `json:"book_id"`
	LoanedAt   time.Time       `json:"loaned_at"`
	DueAt      time.Time       `json:"due_at"`
	PeriodDays int             `json:"period_days"`
	ReturnedAt *time.Time      `json:"returned_at,omitempty"`
	Fine       decimal.Decimal `json:"fine"`
}

// Open reports whether the loan has not been returned yet.
func (l *Loan) Open() bool {
	return l.ReturnedAt == nil
}

// SetFine records the fee snapshot on the loan. Negative amounts fail
// validation before any field changes.
func (l *Loan) SetFine(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeFine
	}
	l.Fine = amount
	return nil
}

// PendingFineError blocks a return while money is owed. It is a business
// rule, not a system failure; the caller settles the fine out-of-band
// (see Service.ResolveFee) and retries.
type PendingFineError struct {
	BookID int
	Amount decimal.Decimal
}

func (e *PendingFineError) Error() string {
	return fmt.Sprintf("pending fine of %s on book %d must be settled before the return can complete",
		e.Amount.StringFixed(2), e.BookID)
}
