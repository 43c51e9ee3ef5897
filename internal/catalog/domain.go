// internal/catalog/domain.go
package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrDuplicateISBN = errors.New("a book with this ISBN is already registered")
	ErrBookOnLoan    = errors.New("book is currently on loan")
	ErrNegativeFine  = errors.New("fine cannot be negative")
)

// Book is a catalog record. While the book is on loan the loan-shadow
// fields (LoanedAt, DueAt, PeriodDays, Fine, FineSettled) are populated;
// they are all zero exactly when Available is true.
type Book struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	Available   bool            `json:"available"`
	LoanedAt    *time.Time      `json:"loaned_at,omitempty"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
	PeriodDays  int             `json:"period_days,omitempty"`
	Fine        decimal.Decimal `json:"fine"`
	FineSettled bool            `json:"fine_settled,omitempty"`
}

// OnLoan reports whether the book is currently lent out.
func (b *Book) OnLoan() bool {
	return !b.Available
}
