package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("creates active account", func(t *testing.T) {
		a, err := NewAccount("1000", "Bank", AccountTypeAsset, "cash")
		require.NoError(t, err)
		assert.True(t, a.Active)
		assert.Empty(t, a.SubledgerKey)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewAccount("", "Bank", AccountTypeAsset, "cash")
		assert.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewAccount("1000", "Bank", AccountType("WEIRD"), "cash")
		assert.Error(t, err)
	})
}

func TestNewSubledgerAccount(t *testing.T) {
	a, err := NewSubledgerAccount("200001", "Payable - Acme Plumbing", AccountTypeLiability, "payable", "vendor:abc")
	require.NoError(t, err)
	assert.Equal(t, "vendor:abc", a.SubledgerKey)
	assert.Equal(t, AccountTypeLiability, a.Type)
}

func TestAccount_Deactivate(t *testing.T) {
	a, err := NewAccount("5000", "Property Maintenance", AccountTypeExpense, "maintenance")
	require.NoError(t, err)

	require.NoError(t, a.Deactivate())
	assert.False(t, a.Active)
	assert.Error(t, a.Deactivate(), "double deactivation must fail")

	a.Reactivate()
	assert.True(t, a.Active)
}

func TestAccountType_DebitNormal(t *testing.T) {
	assert.True(t, AccountTypeAsset.DebitNormal())
	assert.True(t, AccountTypeExpense.DebitNormal())
	assert.False(t, AccountTypeLiability.DebitNormal())
	assert.False(t, AccountTypeIncome.DebitNormal())
	assert.False(t, AccountTypeEquity.DebitNormal())
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	require.Len(t, chart, 17)

	byCode := make(map[string]Account, len(chart))
	for _, a := range chart {
		byCode[a.Code] = a
	}

	// every code the resolver can return must be in the chart
	for _, code := range []string{
		AccountMaintenance, AccountCleaning, AccountSecurity, AccountLandscaping,
		AccountSupplies, AccountProfessionalFee, AccountUtilities, AccountGeneralExpense,
	} {
		_, ok := byCode[code]
		assert.True(t, ok, "resolver target %s missing from chart", code)
	}

	assert.Equal(t, AccountTypeLiability, byCode[AccountDeferredIncome].Type)
	assert.Equal(t, AccountTypeAsset, byCode[AccountReceivable].Type)
	for _, a := range chart {
		assert.True(t, a.Active, "chart account %s must start active", a.Code)
	}
}
