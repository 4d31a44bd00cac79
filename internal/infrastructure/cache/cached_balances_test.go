package cache

import (
	"context"
	"testing"
	"time"

	"github.com/resledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBalanceSource serves fixed balances and counts computations
type countingBalanceSource struct {
	balances map[string]decimal.Decimal
	calls    int
}

func (s *countingBalanceSource) AccountBalance(_ context.Context, code string) (valueobject.Money, error) {
	s.calls++
	return valueobject.NewMoneyZAR(s.balances[code]), nil
}

func TestCachedBalanceReader(t *testing.T) {
	ctx := context.Background()

	newReader := func(balances map[string]decimal.Decimal) (*CachedBalanceReader, *countingBalanceSource) {
		source := &countingBalanceSource{balances: balances}
		return NewCachedBalanceReader(source, NewInMemoryBalanceCache(time.Minute)), source
	}

	t.Run("second read is served from the cache", func(t *testing.T) {
		reader, source := newReader(map[string]decimal.Decimal{"1000": decimal.NewFromInt(3800)})

		first, err := reader.AccountBalance(ctx, "1000")
		require.NoError(t, err)
		second, err := reader.AccountBalance(ctx, "1000")
		require.NoError(t, err)

		assert.True(t, first.Amount().Equal(decimal.NewFromInt(3800)))
		assert.True(t, second.Amount().Equal(decimal.NewFromInt(3800)))
		assert.Equal(t, 1, source.calls)
	})

	t.Run("invalidated accounts are recomputed", func(t *testing.T) {
		reader, source := newReader(map[string]decimal.Decimal{"1000": decimal.NewFromInt(3800)})

		_, err := reader.AccountBalance(ctx, "1000")
		require.NoError(t, err)

		source.balances["1000"] = decimal.NewFromInt(800)
		reader.InvalidateAccounts(ctx, "1000")

		balance, err := reader.AccountBalance(ctx, "1000")
		require.NoError(t, err)
		assert.True(t, balance.Amount().Equal(decimal.NewFromInt(800)))
		assert.Equal(t, 2, source.calls)
	})

	t.Run("invalidating nothing drops everything", func(t *testing.T) {
		reader, source := newReader(map[string]decimal.Decimal{
			"1000": decimal.NewFromInt(10),
			"1100": decimal.NewFromInt(20),
		})

		_, err := reader.AccountBalance(ctx, "1000")
		require.NoError(t, err)
		_, err = reader.AccountBalance(ctx, "1100")
		require.NoError(t, err)

		reader.InvalidateAccounts(ctx)

		_, err = reader.AccountBalance(ctx, "1000")
		require.NoError(t, err)
		_, err = reader.AccountBalance(ctx, "1100")
		require.NoError(t, err)
		assert.Equal(t, 4, source.calls)
	})
}
