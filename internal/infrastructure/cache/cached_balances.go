package cache

import (
	"context"

	applledger "github.com/resledger/backend/internal/application/ledger"
	"github.com/resledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AccountBalanceSource computes an account balance from posted entries
type AccountBalanceSource interface {
	AccountBalance(ctx context.Context, code string) (valueobject.Money, error)
}

// BalanceStore holds cached balances for a bounded staleness window. A
// miss is never an error; balances are always re-derivable from the
// ledger.
type BalanceStore interface {
	Get(ctx context.Context, key string) (decimal.Decimal, bool)
	Set(ctx context.Context, key string, value decimal.Decimal)
	Invalidate(ctx context.Context, keys ...string)
}

// CachedBalanceReader serves account balances cache-aside on top of the
// ledger's balance queries. The ledger core never sees the cache: this
// reader sits with the surrounding read layer, and postings notify it
// through InvalidateAccounts.
type CachedBalanceReader struct {
	source AccountBalanceSource
	store  BalanceStore
}

// NewCachedBalanceReader wraps a balance source with a cache
func NewCachedBalanceReader(source AccountBalanceSource, store BalanceStore) *CachedBalanceReader {
	return &CachedBalanceReader{source: source, store: store}
}

// AccountBalance returns the cached balance when present, otherwise
// computes it from the source and stores the result
func (r *CachedBalanceReader) AccountBalance(ctx context.Context, code string) (valueobject.Money, error) {
	key := balanceKey(code)
	if v, ok := r.store.Get(ctx, key); ok {
		return valueobject.NewMoneyZAR(v), nil
	}

	balance, err := r.source.AccountBalance(ctx, code)
	if err != nil {
		return balance, err
	}
	r.store.Set(ctx, key, balance.Amount())
	return balance, nil
}

// InvalidateAccounts drops the cached balances for the given account
// codes; with no codes it drops everything
func (r *CachedBalanceReader) InvalidateAccounts(ctx context.Context, codes ...string) {
	if len(codes) == 0 {
		r.store.Invalidate(ctx)
		return
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = balanceKey(code)
	}
	r.store.Invalidate(ctx, keys...)
}

func balanceKey(code string) string {
	return "balance:" + code
}

// Ensure the reader plugs into the ledger facade's invalidation hook and
// the in-memory cache satisfies the store contract
var (
	_ applledger.BalanceInvalidator = (*CachedBalanceReader)(nil)
	_ AccountBalanceSource          = (*applledger.BalanceService)(nil)
	_ BalanceStore                  = (*InMemoryBalanceCache)(nil)
)
