package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBalanceCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		c.Set(ctx, "balance:1000", decimal.NewFromInt(3800))

		v, ok := c.Get(ctx, "balance:1000")
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(3800)))
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		_, ok := c.Get(ctx, "balance:9999")
		assert.False(t, ok)
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
		c := NewInMemoryBalanceCache(30*time.Second, WithBalanceClock(func() time.Time { return now }))

		c.Set(ctx, "balance:1000", decimal.NewFromInt(100))
		_, ok := c.Get(ctx, "balance:1000")
		require.True(t, ok)

		now = now.Add(31 * time.Second)
		_, ok = c.Get(ctx, "balance:1000")
		assert.False(t, ok)
	})

	t.Run("invalidate selected keys", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		c.Set(ctx, "balance:1000", decimal.NewFromInt(1))
		c.Set(ctx, "balance:1100", decimal.NewFromInt(2))

		c.Invalidate(ctx, "balance:1000")

		_, ok := c.Get(ctx, "balance:1000")
		assert.False(t, ok)
		_, ok = c.Get(ctx, "balance:1100")
		assert.True(t, ok)
	})

	t.Run("invalidate everything", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		c.Set(ctx, "balance:1000", decimal.NewFromInt(1))
		c.Set(ctx, "balance:1100", decimal.NewFromInt(2))

		c.Invalidate(ctx)

		_, ok := c.Get(ctx, "balance:1000")
		assert.False(t, ok)
		_, ok = c.Get(ctx, "balance:1100")
		assert.False(t, ok)
	})

	t.Run("zero ttl falls back to the default", func(t *testing.T) {
		c := NewInMemoryBalanceCache(0)
		c.Set(ctx, "balance:1000", decimal.NewFromInt(5))
		_, ok := c.Get(ctx, "balance:1000")
		assert.True(t, ok)
	})
}
