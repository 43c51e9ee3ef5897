// internal/catalog/service.go
package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service defines the interface for the catalog service. The loan-shadow
// mutators (MarkLoaned, MarkReturned, SetFine, SettleFine) are driven
// exclusively by the loan service as part of borrow/return transitions.
type Service interface {
	Register(ctx context.Context, title, author, isbn string) (*Book, error)
	FindByID(ctx context.Context, id int) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	Update(ctx context.Context, id int, title, author, isbn string) (*Book, error)
	Remove(ctx context.Context, id int) error
	ListAll(ctx context.Context) ([]*Book, error)
	ListByTitle(ctx context.Context, substr string) ([]*Book, error)
	ListByAuthor(ctx context.Context, substr string) ([]*Book, error)

	MarkLoaned(ctx context.Context, id int, loanedAt, dueAt time.Time, periodDays int) error
	MarkReturned(ctx context.Context, id int) error
	SetFine(ctx context.Context, id int, fine decimal.Decimal) error
	SettleFine(ctx context.Context, id int) error
}
