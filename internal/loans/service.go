// internal/loans/service.go
package loans

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service orchestrates the catalog and the ledger to run the loan
// lifecycle. All invariants live here; the stores only hold state.
type Service interface {
	// Borrow opens a loan for an available book. The period must be
	// between 1 and MaxPeriodDays days.
	Borrow(ctx context.Context, bookID, periodDays int) (*Loan, error)

	// Return closes the open loan for a book. If a fine has accrued and
	// has not been settled, it fails with *PendingFineError and leaves
	// all loan state untouched.
	Return(ctx context.Context, bookID int) error

	// CalculateFee previews the fee that would be owed if the book were
	// returned today. It never mutates state.
	CalculateFee(ctx context.Context, bookID int) (decimal.Decimal, error)

	// ResolveFee settles the outstanding fine on a borrowed book so a
	// subsequent Return can complete. It returns the settled amount.
	ResolveFee(ctx context.Context, bookID int) (decimal.Decimal, error)

	// ListActiveLoans returns all open loans.
	ListActiveLoans(ctx context.Context) ([]*Loan, error)
}
