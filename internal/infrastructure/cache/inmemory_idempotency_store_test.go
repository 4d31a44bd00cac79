package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first mark succeeds", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "ledger:payment:PAY-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("second mark reports already processed", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "ledger:payment:PAY-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("expired key can be marked again", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "ledger:payment:PAY-2", time.Nanosecond)
		require.NoError(t, err)
		assert.True(t, marked)

		time.Sleep(5 * time.Millisecond)

		marked, err = store.MarkProcessed(ctx, "ledger:payment:PAY-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("unknown key", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "ledger:payment:unknown")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marked key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "ledger:payment:PAY-3", time.Minute)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "ledger:payment:PAY-3")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "ledger:payment:PAY-4", time.Nanosecond)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "ledger:payment:PAY-4")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "keep", time.Hour)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "drop-1", time.Nanosecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "drop-2", time.Nanosecond)
	require.NoError(t, err)
	require.Equal(t, 3, store.Size())

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	processed, err := store.IsProcessed(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "double close must be safe")
}

func TestInMemoryIdempotencyStore_ConcurrentMarks(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const workers = 16
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			marked, err := store.MarkProcessed(ctx, "ledger:payment:contested", time.Minute)
			assert.NoError(t, err)
			results <- marked
		}()
	}

	winners := 0
	for i := 0; i < workers; i++ {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent mark must win")
}
