package pettycash

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocation(t *testing.T, amount int64) *Allocation {
	t.Helper()
	a, err := NewAllocation("housekeeper", uuid.New(), decimal.NewFromInt(amount), time.Now())
	require.NoError(t, err)
	return a
}

func TestNewAllocation(t *testing.T) {
	t.Run("starts active with full float remaining", func(t *testing.T) {
		a := newTestAllocation(t, 2000)
		assert.Equal(t, AllocationStatusActive, a.Status)
		assert.True(t, a.RemainingAmount.Equal(a.AllocatedAmount))
		assert.True(t, a.SpentAmount().IsZero())
	})

	t.Run("rejects empty role", func(t *testing.T) {
		_, err := NewAllocation("", uuid.New(), decimal.NewFromInt(100), time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewAllocation("housekeeper", uuid.New(), decimal.Zero, time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects missing residence", func(t *testing.T) {
		_, err := NewAllocation("housekeeper", uuid.Nil, decimal.NewFromInt(100), time.Now())
		assert.ErrorIs(t, err, shared.ErrMissingResidence)
	})
}

func TestAllocation_RecordUsage(t *testing.T) {
	t.Run("draws down the float", func(t *testing.T) {
		a := newTestAllocation(t, 2000)
		require.NoError(t, a.RecordUsage(decimal.NewFromInt(450)))
		assert.True(t, a.RemainingAmount.Equal(decimal.NewFromInt(1550)))
		assert.True(t, a.SpentAmount().Equal(decimal.NewFromInt(450)))
	})

	t.Run("rejects overdraw", func(t *testing.T) {
		a := newTestAllocation(t, 500)
		err := a.RecordUsage(decimal.NewFromInt(501))
		assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
		assert.True(t, a.RemainingAmount.Equal(decimal.NewFromInt(500)))
	})

	t.Run("allows draining to exactly zero", func(t *testing.T) {
		a := newTestAllocation(t, 500)
		require.NoError(t, a.RecordUsage(decimal.NewFromInt(500)))
		assert.True(t, a.RemainingAmount.IsZero())
	})

	t.Run("rejects usage on inactive float", func(t *testing.T) {
		a := newTestAllocation(t, 500)
		require.NoError(t, a.Deactivate())
		assert.Error(t, a.RecordUsage(decimal.NewFromInt(10)))
	})
}

func TestAllocation_TopUp(t *testing.T) {
	a := newTestAllocation(t, 500)
	require.NoError(t, a.RecordUsage(decimal.NewFromInt(300)))
	require.NoError(t, a.TopUp(decimal.NewFromInt(1000)))
	assert.True(t, a.AllocatedAmount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, a.RemainingAmount.Equal(decimal.NewFromInt(1200)))

	require.NoError(t, a.Close())
	assert.Error(t, a.TopUp(decimal.NewFromInt(100)))
}

func TestAllocation_Lifecycle(t *testing.T) {
	a := newTestAllocation(t, 500)

	require.NoError(t, a.Deactivate())
	assert.Error(t, a.Deactivate())
	require.NoError(t, a.Reactivate())
	assert.Error(t, a.Reactivate())

	require.NoError(t, a.Close())
	assert.Equal(t, AllocationStatusClosed, a.Status)
	assert.Error(t, a.Close())
	assert.Error(t, a.Reactivate())
}
