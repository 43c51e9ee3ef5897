package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_AssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	first, err := svc.Register(ctx, "Dune", "Herbert", "978-0441172719")
	require.NoError(t, err)
	second, err := svc.Register(ctx, "Hyperion", "Simmons", "978-0553283686")
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.True(t, first.Available)
	assert.Nil(t, first.LoanedAt)
	assert.True(t, first.Fine.IsZero())
}

func TestRegister_DuplicateISBN(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	_, err := svc.Register(ctx, "Dune", "Herbert", "978-0441172719")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Dune (reprint)", "Herbert", "978-0441172719")
	assert.ErrorIs(t, err, ErrDuplicateISBN)

	// The catalog kept only the first.
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Dune", all[0].Title)
}

func TestFindByIDAndISBN(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	book, err := svc.Register(ctx, "Dune", "Herbert", "978-0441172719")
	require.NoError(t, err)

	got, err := svc.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ISBN, got.ISBN)

	got, err = svc.FindByISBN(ctx, " 978-0441172719 ")
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)

	_, err = svc.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.FindByISBN(ctx, "no-such-isbn")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	book, err := svc.Register(ctx, "Dune", "Herbert", "978-0441172719")
	require.NoError(t, err)
	other, err := svc.Register(ctx, "Hyperion", "Simmons", "978-0553283686")
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(ctx, 99, "x", "y", "z")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate isbn of another book", func(t *testing.T) {
		_, err := svc.Update(ctx, book.ID, "Dune", "Herbert", other.ISBN)
		assert.ErrorIs(t, err, ErrDuplicateISBN)
	})

	t.Run("keeping own isbn is fine", func(t *testing.T) {
		updated, err := svc.Update(ctx, book.ID, "Dune Messiah", "Frank Herbert", book.ISBN)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", updated.Title)
		assert.Equal(t, "Frank Herbert", updated.Author)
	})

	t.Run("borrowed book cannot be edited", func(t *testing.T) {
		day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, svc.MarkLoaned(ctx, book.ID, day, day.AddDate(0, 0, 14), 14))

		_, err := svc.Update(ctx, book.ID, "Dune", "Herbert", book.ISBN)
		assert.ErrorIs(t, err, ErrBookOnLoan)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	book, err := svc.Register(ctx, "Dune", "Herbert", "978-0441172719")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Remove(ctx, 99), ErrNotFound)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.MarkLoaned(ctx, book.ID, day, day.AddDate(0, 0, 14), 14))
	assert.ErrorIs(t, svc.Remove(ctx, book.ID), ErrBookOnLoan)

	require.NoError(t, svc.MarkReturned(ctx, book.ID))
	require.NoError(t, svc.Remove(ctx, book.ID))

	_, err = svc.FindByID(ctx, book.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilters_CaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	_, err := svc.Register(ctx, "The Left Hand of Darkness", "Ursula K. Le Guin", "978-0441478125")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "A Wizard of Earthsea", "Ursula K. Le Guin", "978-0547722023")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Neuromancer", "William Gibson", "978-0441569595")
	require.NoError(t, err)

	byTitle, err := svc.ListByTitle(ctx, "of")
	require.NoError(t, err)
	assert.Len(t, byTitle, 2)

	byTitle, err = svc.ListByTitle(ctx, "NEURO")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Neuromancer", byTitle[0].Title)

	byAuthor, err := svc.ListByAuthor(ctx, "le guin")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byAuthor, err = svc.ListByAuthor(ctx, "  gibson ")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)
}

func TestLoanShadowLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	book, err := svc.Register(ctx, "Dune", "Herbert", "978-0441172719")
	require.NoError(t, err)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	due := day.AddDate(0, 0, 14)

	require.NoError(t, svc.MarkLoaned(ctx, book.ID, day, due, 14))

	// Double-loan at the store level is rejected too.
	assert.ErrorIs(t, svc.MarkLoaned(ctx, book.ID, day, due, 14), ErrBookOnLoan)

	loaned, err := svc.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, loaned.Available)
	require.NotNil(t, loaned.LoanedAt)
	assert.Equal(t, day, *loaned.LoanedAt)
	assert.Equal(t, due, *loaned.DueAt)
	assert.Equal(t, 14, loaned.PeriodDays)

	require.NoError(t, svc.SetFine(ctx, book.ID, decimal.NewFromInt(8)))
	assert.ErrorIs(t, svc.SetFine(ctx, book.ID, decimal.NewFromInt(-1)), ErrNegativeFine)

	require.NoError(t, svc.SettleFine(ctx, book.ID))
	settled, err := svc.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, settled.Fine.IsZero())
	assert.True(t, settled.FineSettled)

	require.NoError(t, svc.MarkReturned(ctx, book.ID))
	returned, err := svc.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, returned.Available)
	assert.Nil(t, returned.LoanedAt)
	assert.Nil(t, returned.DueAt)
	assert.Zero(t, returned.PeriodDays)
	assert.False(t, returned.FineSettled)
}

func TestFindReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	book, err := svc.Register(ctx, "Dune", "Herbert", "978-0441172719")
	require.NoError(t, err)

	book.Title = "mutated by caller"

	got, err := svc.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}
