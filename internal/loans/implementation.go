// internal/loans/implementation.go
package loans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"libris/internal/audit"
	"libris/internal/catalog"
)

// service implements the Service interface.
type service struct {
	catalog catalog.Service
	ledger  Ledger
	fees    FeeCalculator
	journal audit.Journal
	logger  *slog.Logger
	now     func() time.Time
	tracer  trace.Tracer
	locks   bookLocks

	loansOpened   metric.Int64Counter
	finesAssessed metric.Int64Counter
}

// NewService creates a new loan service instance.
func NewService(cat catalog.Service, ledger Ledger, fees FeeCalculator, journal audit.Journal) Service {
	meter := otel.Meter("libris/loans")
	loansOpened, _ := meter.Int64Counter("libris.loans.opened")
	finesAssessed, _ := meter.Int64Counter("libris.fines.assessed")

	return &service{
		catalog:       cat,
		ledger:        ledger,
		fees:          fees,
		journal:       journal,
		logger:        slog.Default(),
		now:           time.Now,
		tracer:        otel.Tracer("libris/loans"),
		loansOpened:   loansOpened,
		finesAssessed: finesAssessed,
	}
}

// Borrow opens a loan for an available book.
func (s *service) Borrow(ctx context.Context, bookID, periodDays int) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, "loans.borrow",
		trace.WithAttributes(
			attribute.Int("book.id", bookID),
			attribute.Int("loan.period_days", periodDays),
		),
	)
	defer span.End()

	// All checks precede all mutations.
	if periodDays <= 0 || periodDays > MaxPeriodDays {
		return nil, ErrInvalidPeriod
	}

	unlock := s.locks.lock(bookID)
	defer unlock()

	book, err := s.catalog.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.Available {
		return nil, ErrAlreadyLoaned
	}

	loanedAt := truncateToDay(s.now())
	dueAt := loanedAt.AddDate(0, 0, periodDays)

	loan, err := s.ledger.Open(ctx, bookID, loanedAt, dueAt, periodDays)
	if err != nil {
		return nil, fmt.Errorf("open loan: %w", err)
	}

	if err := s.catalog.MarkLoaned(ctx, bookID, loanedAt, dueAt, periodDays); err != nil {
		// Compensate so the ledger does not keep a loan the catalog
		// never saw.
		if closeErr := s.ledger.Close(ctx, loan.ID, loanedAt, decimal.Zero); closeErr != nil {
			s.logger.Error("failed to compensate ledger after catalog error",
				"book_id", bookID, "loan_id", loan.ID, "error", closeErr)
		}
		return nil, fmt.Errorf("mark book loaned: %w", err)
	}

	s.loansOpened.Add(ctx, 1)
	s.record(ctx, audit.Entry{
		Kind:   audit.KindLoanOpened,
		BookID: bookID,
		LoanID: loan.ID,
		Detail: detailJSON(map[string]any{"period_days": periodDays, "due_at": dueAt}),
	})
	span.SetAttributes(attribute.Int("loan.id", loan.ID))

	return loan, nil
}

// Return closes the open loan for a book, unless a fine blocks it.
func (s *service) Return(ctx context.Context, bookID int) error {
	ctx, span := s.tracer.Start(ctx, "loans.return",
		trace.WithAttributes(attribute.Int("book.id", bookID)),
	)
	defer span.End()

	unlock := s.locks.lock(bookID)
	defer unlock()

	book, err := s.catalog.FindByID(ctx, bookID)
	if err != nil {
		return err
	}
	if book.Available {
		return ErrNotLoaned
	}

	today := truncateToDay(s.now())
	fee := s.feeFor(book, today)

	if fee.IsPositive() && !book.FineSettled {
		if err := s.catalog.SetFine(ctx, bookID, fee); err != nil {
			return fmt.Errorf("record fine: %w", err)
		}
		s.finesAssessed.Add(ctx, 1)
		s.record(ctx, audit.Entry{
			Kind:   audit.KindFineAssessed,
			BookID: bookID,
			Detail: detailJSON(map[string]any{"amount": fee.StringFixed(2)}),
		})
		span.SetAttributes(attribute.String("fine.amount", fee.StringFixed(2)))
		return &PendingFineError{BookID: bookID, Amount: fee}
	}

	loanID := 0
	loan, err := s.ledger.FindOpenByBookID(ctx, bookID)
	switch {
	case err == nil:
		loanID = loan.ID
		if err := s.ledger.Close(ctx, loan.ID, today, fee); err != nil {
			return fmt.Errorf("close loan: %w", err)
		}
	case !errors.Is(err, ErrNoOpenLoan):
		return fmt.Errorf("find open loan: %w", err)
	}

	if err := s.catalog.MarkReturned(ctx, bookID); err != nil {
		return fmt.Errorf("mark book returned: %w", err)
	}

	s.record(ctx, audit.Entry{
		Kind:   audit.KindLoanReturned,
		BookID: bookID,
		LoanID: loanID,
		Detail: detailJSON(map[string]any{"fine": fee.StringFixed(2)}),
	})

	return nil
}

// CalculateFee previews the fee owed as of today.
func (s *service) CalculateFee(ctx context.Context, bookID int) (decimal.Decimal, error) {
	book, err := s.catalog.FindByID(ctx, bookID)
	if err != nil {
		return decimal.Zero, err
	}
	if book.Available {
		return decimal.Zero, nil
	}
	return s.feeFor(book, truncateToDay(s.now())), nil
}

// ResolveFee settles the outstanding fine on a borrowed book.
func (s *service) ResolveFee(ctx context.Context, bookID int) (decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "loans.resolve_fee",
		trace.WithAttributes(attribute.Int("book.id", bookID)),
	)
	defer span.End()

	unlock := s.locks.lock(bookID)
	defer unlock()

	book, err := s.catalog.FindByID(ctx, bookID)
	if err != nil {
		return decimal.Zero, err
	}
	if book.Available {
		return decimal.Zero, ErrNotLoaned
	}
	if book.FineSettled {
		return decimal.Zero, nil
	}

	fee := s.feeFor(book, truncateToDay(s.now()))
	if !fee.IsPositive() {
		return decimal.Zero, nil
	}

	if err := s.catalog.SettleFine(ctx, bookID); err != nil {
		return decimal.Zero, fmt.Errorf("settle fine: %w", err)
	}
	s.record(ctx, audit.Entry{
		Kind:   audit.KindFineSettled,
		BookID: bookID,
		Detail: detailJSON(map[string]any{"amount": fee.StringFixed(2)}),
	})
	span.SetAttributes(attribute.String("fine.amount", fee.StringFixed(2)))

	return fee, nil
}

// ListActiveLoans returns all open loans.
func (s *service) ListActiveLoans(ctx context.Context) ([]*Loan, error) {
	return s.ledger.ListOpen(ctx)
}

// feeFor computes the fee owed for a borrowed book as of the given day.
func (s *service) feeFor(book *catalog.Book, today time.Time) decimal.Decimal {
	if book.LoanedAt == nil {
		return decimal.Zero
	}
	return s.fees.Calculate(overdueDays(*book.LoanedAt, today))
}

// record appends a journal entry. The journal is an observer; its
// failure never fails the domain operation.
func (s *service) record(ctx context.Context, e audit.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(ctx, e); err != nil {
		s.logger.Warn("failed to append audit entry", "kind", e.Kind, "book_id", e.BookID, "error", err)
	}
}

func detailJSON(v map[string]any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// bookLocks hands out one mutex per book identity so the
// check-then-mutate sequences in Borrow and Return cannot interleave
// for the same book.
type bookLocks struct {
	mu sync.Mutex
	m  map[int]*sync.Mutex
}

func (b *bookLocks) lock(bookID int) func() {
	b.mu.Lock()
	if b.m == nil {
		b.m = make(map[int]*sync.Mutex)
	}
	l, ok := b.m[bookID]
	if !ok {
		l = &sync.Mutex{}
		b.m[bookID] = l
	}
	b.mu.Unlock()

	l.Lock()
	return l.Unlock
}
