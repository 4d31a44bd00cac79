package pettycash

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsage(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		u, err := NewUsage(uuid.New(), "cleaning supplies", "supplies", decimal.NewFromInt(150), time.Now())
		require.NoError(t, err)
		assert.Equal(t, UsageStatusPending, u.Status)
		assert.False(t, u.Status.IsTerminal())
	})

	t.Run("rejects missing allocation", func(t *testing.T) {
		_, err := NewUsage(uuid.Nil, "cleaning supplies", "supplies", decimal.NewFromInt(150), time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewUsage(uuid.New(), "cleaning supplies", "supplies", decimal.Zero, time.Now())
		assert.Error(t, err)
	})
}

func TestUsage_ApproveAndReject(t *testing.T) {
	now := time.Now()

	t.Run("approval is terminal", func(t *testing.T) {
		u, err := NewUsage(uuid.New(), "lightbulbs", "supplies", decimal.NewFromInt(80), now)
		require.NoError(t, err)

		require.NoError(t, u.Approve("manager", now))
		assert.Equal(t, UsageStatusApproved, u.Status)
		assert.Equal(t, "manager", u.ReviewedBy)
		require.NotNil(t, u.ReviewedAt)

		assert.Error(t, u.Approve("manager", now))
		assert.Error(t, u.Reject("manager", now))
	})

	t.Run("rejection is terminal", func(t *testing.T) {
		u, err := NewUsage(uuid.New(), "lightbulbs", "supplies", decimal.NewFromInt(80), now)
		require.NoError(t, err)

		require.NoError(t, u.Reject("manager", now))
		assert.Equal(t, UsageStatusRejected, u.Status)
		assert.Error(t, u.Approve("manager", now))
	})
}

func TestUsage_LinkRequest(t *testing.T) {
	u, err := NewUsage(uuid.New(), "tap washer", "maintenance", decimal.NewFromInt(40), time.Now())
	require.NoError(t, err)
	u.LinkRequest("REQ-77")
	assert.Equal(t, "REQ-77", u.RequestID)
}
