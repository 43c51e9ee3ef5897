package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJournal_AppendStampsEntries(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryJournal()

	err := journal.Append(ctx, Entry{
		Kind:   KindLoanOpened,
		BookID: 1,
		LoanID: 1,
		Detail: json.RawMessage(`{"period_days":14}`),
	})
	require.NoError(t, err)

	entries, err := journal.ByBook(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.False(t, entries[0].RecordedAt.IsZero())
	assert.Equal(t, KindLoanOpened, entries[0].Kind)
}

func TestMemoryJournal_ByBookFilters(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryJournal()

	require.NoError(t, journal.Append(ctx, Entry{Kind: KindLoanOpened, BookID: 1}))
	require.NoError(t, journal.Append(ctx, Entry{Kind: KindLoanOpened, BookID: 2}))
	require.NoError(t, journal.Append(ctx, Entry{Kind: KindLoanReturned, BookID: 1}))

	entries, err := journal.ByBook(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindLoanOpened, entries[0].Kind)
	assert.Equal(t, KindLoanReturned, entries[1].Kind)

	entries, err = journal.ByBook(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
