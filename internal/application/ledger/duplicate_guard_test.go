package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func guardTestEntry(t *testing.T, sourceID string) *ledger.TransactionEntry {
	t.Helper()
	amount := decimal.NewFromInt(100)
	entry, err := ledger.NewTransactionEntry(uuid.New(), ledger.SourcePayment, sourceID, []ledger.LineEntry{
		ledger.DebitLine(ledger.AccountBank, ledger.AccountTypeAsset, amount, "in"),
		ledger.CreditLine(ledger.AccountReceivable, ledger.AccountTypeAsset, amount, "out"),
	}, nil)
	require.NoError(t, err)
	return entry
}

func TestDuplicateGuard_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown key is a fast miss", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		guard := NewDuplicateGuard(repo, newFakeIdempotencyStore(), time.Hour, time.Hour, nil)

		entry, err := guard.Check(ctx, ledger.SourcePayment, "PAY-1")
		require.NoError(t, err)
		assert.Nil(t, entry)
		repo.AssertNotCalled(t, "FindEntryBySource", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("known key confirms against the ledger", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		store := newFakeIdempotencyStore()
		guard := NewDuplicateGuard(repo, store, time.Hour, time.Hour, nil)

		existing := guardTestEntry(t, "PAY-2")
		_, err := store.MarkProcessed(ctx, "ledger:payment:PAY-2", time.Hour)
		require.NoError(t, err)
		repo.On("FindEntryBySource", ctx, ledger.SourcePayment, "PAY-2").Return(existing, nil)

		entry, err := guard.Check(ctx, ledger.SourcePayment, "PAY-2")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, existing.ID, entry.ID)
	})

	t.Run("store hit without a ledger entry is a miss", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		store := newFakeIdempotencyStore()
		guard := NewDuplicateGuard(repo, store, time.Hour, time.Hour, nil)

		_, err := store.MarkProcessed(ctx, "ledger:payment:PAY-3", time.Hour)
		require.NoError(t, err)
		repo.On("FindEntryBySource", ctx, ledger.SourcePayment, "PAY-3").Return(nil, nil)

		entry, err := guard.Check(ctx, ledger.SourcePayment, "PAY-3")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("store failure degrades to the ledger lookup", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		store := newFakeIdempotencyStore()
		store.err = errors.New("store down")
		guard := NewDuplicateGuard(repo, store, time.Hour, time.Hour, nil)

		existing := guardTestEntry(t, "PAY-4")
		repo.On("FindEntryBySource", ctx, ledger.SourcePayment, "PAY-4").Return(existing, nil)

		entry, err := guard.Check(ctx, ledger.SourcePayment, "PAY-4")
		require.NoError(t, err)
		require.NotNil(t, entry)
	})

	t.Run("empty source id is never a duplicate", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		guard := NewDuplicateGuard(repo, newFakeIdempotencyStore(), time.Hour, time.Hour, nil)

		entry, err := guard.Check(ctx, ledger.SourcePayment, "")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("nil store still consults the ledger", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		guard := NewDuplicateGuard(repo, nil, time.Hour, time.Hour, nil)

		existing := guardTestEntry(t, "PAY-5")
		repo.On("FindEntryBySource", ctx, ledger.SourcePayment, "PAY-5").Return(existing, nil)

		entry, err := guard.Check(ctx, ledger.SourcePayment, "PAY-5")
		require.NoError(t, err)
		require.NotNil(t, entry)
	})
}

func TestDuplicateGuard_WarmUp(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	store := newFakeIdempotencyStore()
	guard := NewDuplicateGuard(repo, store, time.Hour, time.Hour, nil)

	recent := []ledger.TransactionEntry{
		*guardTestEntry(t, "PAY-10"),
		*guardTestEntry(t, "PAY-11"),
	}
	repo.On("FindRecentEntries", ctx, ledger.SourcePayment, mock.AnythingOfType("time.Time")).Return(recent, nil)
	repo.On("FindRecentEntries", ctx, ledger.SourceExpenseAccrual, mock.AnythingOfType("time.Time")).Return([]ledger.TransactionEntry{}, nil)

	require.NoError(t, guard.WarmUp(ctx, ledger.SourcePayment, ledger.SourceExpenseAccrual))

	seen, err := store.IsProcessed(ctx, "ledger:payment:PAY-10")
	require.NoError(t, err)
	assert.True(t, seen)
	seen, err = store.IsProcessed(ctx, "ledger:payment:PAY-11")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDuplicateGuard_Defaults(t *testing.T) {
	guard := NewDuplicateGuard(new(MockTransactionRepository), nil, 0, 0, nil)
	assert.Equal(t, 24*time.Hour, guard.Window())
}
