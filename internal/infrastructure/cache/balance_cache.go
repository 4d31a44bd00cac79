package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// balanceEntry is one cached balance with its expiry
type balanceEntry struct {
	value     decimal.Decimal
	expiresAt time.Time
}

// InMemoryBalanceCache caches computed account balances with a TTL.
// The clock is injectable so expiry can be tested without sleeping.
type InMemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[string]balanceEntry
	ttl     time.Duration
	now     func() time.Time
}

// BalanceCacheOption configures an InMemoryBalanceCache
type BalanceCacheOption func(*InMemoryBalanceCache)

// WithBalanceClock injects the time source
func WithBalanceClock(now func() time.Time) BalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		c.now = now
	}
}

// NewInMemoryBalanceCache creates a balance cache with the given TTL
func NewInMemoryBalanceCache(ttl time.Duration, opts ...BalanceCacheOption) *InMemoryBalanceCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	c := &InMemoryBalanceCache{
		entries: make(map[string]balanceEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a cached balance if present and not expired
func (c *InMemoryBalanceCache) Get(ctx context.Context, key string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return decimal.Zero, false
	}
	return e.value, true
}

// Set stores a balance under the key for the cache's TTL
func (c *InMemoryBalanceCache) Set(ctx context.Context, key string, value decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = balanceEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops the given keys; with no keys it drops everything
func (c *InMemoryBalanceCache) Invalidate(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = make(map[string]balanceEntry)
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}
