package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	residenceID := uuid.New()

	t.Run("creates transaction with valid input", func(t *testing.T) {
		tx, err := NewTransaction(time.Now(), "Rent payment", TransactionTypePayment, "PAY-001", residenceID, "admin")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Equal(t, TransactionTypePayment, tx.Type)
		assert.Equal(t, residenceID, tx.ResidenceID)
		assert.Equal(t, "PAY-001", tx.Reference)
	})

	t.Run("rejects missing residence", func(t *testing.T) {
		tx, err := NewTransaction(time.Now(), "Rent payment", TransactionTypePayment, "PAY-001", uuid.Nil, "admin")
		assert.Nil(t, tx)
		assert.ErrorIs(t, err, shared.ErrMissingResidence)
	})

	t.Run("rejects invalid transaction type", func(t *testing.T) {
		tx, err := NewTransaction(time.Now(), "Rent payment", TransactionType("bogus"), "PAY-001", residenceID, "admin")
		assert.Nil(t, tx)
		assert.Error(t, err)
	})

	t.Run("defaults zero date to now", func(t *testing.T) {
		tx, err := NewTransaction(time.Time{}, "Rent payment", TransactionTypePayment, "", residenceID, "admin")
		require.NoError(t, err)
		assert.False(t, tx.Date.IsZero())
	})
}

func TestNewTransactionEntry(t *testing.T) {
	txID := uuid.New()
	amount := decimal.NewFromInt(3000)

	balancedLines := func() []LineEntry {
		return []LineEntry{
			DebitLine(AccountBank, AccountTypeAsset, amount, "Payment received"),
			CreditLine(AccountReceivable, AccountTypeAsset, amount, "Rent settlement"),
		}
	}

	t.Run("creates posted entry from balanced lines", func(t *testing.T) {
		e, err := NewTransactionEntry(txID, SourcePayment, "PAY-001", balancedLines(), nil)
		require.NoError(t, err)
		assert.Equal(t, EntryStatusPosted, e.Status)
		assert.True(t, e.TotalDebit.Equal(amount))
		assert.True(t, e.TotalCredit.Equal(amount))
		assert.Equal(t, SourcePayment, e.Source)
		assert.Equal(t, "PAY-001", e.SourceID)
		assert.NotNil(t, e.Metadata)
	})

	t.Run("rejects unbalanced lines and persists nothing", func(t *testing.T) {
		lines := []LineEntry{
			DebitLine(AccountBank, AccountTypeAsset, decimal.NewFromInt(3000), "Payment received"),
			CreditLine(AccountReceivable, AccountTypeAsset, decimal.NewFromInt(2999), "Rent settlement"),
		}
		e, err := NewTransactionEntry(txID, SourcePayment, "PAY-002", lines, nil)
		assert.Nil(t, e)
		assert.ErrorIs(t, err, shared.ErrUnbalancedEntry)
	})

	t.Run("rejects single-line entries", func(t *testing.T) {
		lines := []LineEntry{DebitLine(AccountBank, AccountTypeAsset, amount, "Payment received")}
		_, err := NewTransactionEntry(txID, SourcePayment, "PAY-003", lines, nil)
		assert.Error(t, err)
	})

	t.Run("rejects a line with both sides set", func(t *testing.T) {
		lines := balancedLines()
		lines[0].Credit = decimal.NewFromInt(1)
		lines[1].Credit = lines[1].Credit.Add(decimal.NewFromInt(1))
		_, err := NewTransactionEntry(txID, SourcePayment, "PAY-004", lines, nil)
		assert.Error(t, err)
	})

	t.Run("rejects a line with neither side set", func(t *testing.T) {
		lines := []LineEntry{
			{AccountCode: AccountBank, AccountType: AccountTypeAsset, Debit: decimal.Zero, Credit: decimal.Zero},
			CreditLine(AccountReceivable, AccountTypeAsset, decimal.Zero, "nothing"),
		}
		_, err := NewTransactionEntry(txID, SourcePayment, "PAY-005", lines, nil)
		assert.Error(t, err)
	})

	t.Run("rejects zero-total entries", func(t *testing.T) {
		lines := []LineEntry{
			DebitLine(AccountBank, AccountTypeAsset, decimal.Zero, "zero"),
			CreditLine(AccountReceivable, AccountTypeAsset, decimal.Zero, "zero"),
		}
		_, err := NewTransactionEntry(txID, SourcePayment, "PAY-006", lines, nil)
		assert.Error(t, err)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		lines := []LineEntry{
			DebitLine(AccountBank, AccountTypeAsset, decimal.NewFromInt(-10), "bad"),
			CreditLine(AccountReceivable, AccountTypeAsset, decimal.NewFromInt(-10), "bad"),
		}
		_, err := NewTransactionEntry(txID, SourcePayment, "PAY-007", lines, nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty source", func(t *testing.T) {
		_, err := NewTransactionEntry(txID, "", "PAY-008", balancedLines(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects missing account code", func(t *testing.T) {
		lines := balancedLines()
		lines[0].AccountCode = ""
		_, err := NewTransactionEntry(txID, SourcePayment, "PAY-009", lines, nil)
		assert.Error(t, err)
	})
}

func TestTransactionEntry_Reversal(t *testing.T) {
	txID := uuid.New()
	amount := decimal.NewFromInt(500)
	lines := []LineEntry{
		DebitLine(AccountMaintenance, AccountTypeExpense, amount, "Plumbing repair"),
		CreditLine(AccountPayable, AccountTypeLiability, amount, "Accrued: plumbing repair").WithPeriod("2026-09"),
	}

	t.Run("OffsetLines mirrors debits and credits and keeps periods", func(t *testing.T) {
		e, err := NewTransactionEntry(txID, SourceExpenseAccrual, "REQ-1", lines, nil)
		require.NoError(t, err)

		offset := e.OffsetLines()
		require.Len(t, offset, 2)
		assert.True(t, offset[0].Credit.Equal(amount))
		assert.True(t, offset[0].Debit.IsZero())
		assert.True(t, offset[1].Debit.Equal(amount))
		assert.Equal(t, "2026-09", offset[1].Period)

		// the offset lines themselves form a valid entry
		_, err = NewTransactionEntry(txID, SourceReversal, e.ID.String(), offset, nil)
		assert.NoError(t, err)
	})

	t.Run("MarkReversed flips status once", func(t *testing.T) {
		e, err := NewTransactionEntry(txID, SourceExpenseAccrual, "REQ-2", lines, nil)
		require.NoError(t, err)

		offsetID := uuid.New()
		require.NoError(t, e.MarkReversed(offsetID))
		assert.Equal(t, EntryStatusReversed, e.Status)
		assert.Equal(t, offsetID.String(), e.Metadata[MetaReversedEntryID])
		assert.False(t, e.IsPosted())

		assert.Error(t, e.MarkReversed(uuid.New()))
	})
}

func TestTransactionEntry_CreditedAccount(t *testing.T) {
	txID := uuid.New()
	amount := decimal.NewFromInt(750)
	e, err := NewTransactionEntry(txID, SourceExpenseAccrual, "REQ-3", []LineEntry{
		DebitLine(AccountCleaning, AccountTypeExpense, amount, "Deep clean"),
		CreditLine("200001", AccountTypeLiability, amount, "Accrued to vendor"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "200001", e.CreditedAccount(AccountTypeLiability))
	assert.Equal(t, "", e.CreditedAccount(AccountTypeAsset))
}

func TestEntrySource_CashMoving(t *testing.T) {
	assert.True(t, SourcePayment.CashMoving())
	assert.True(t, SourceVendorPayment.CashMoving())
	assert.True(t, SourcePettyCashAllocation.CashMoving())
	assert.True(t, SourcePettyCashExpense.CashMoving())
	assert.False(t, SourceExpenseAccrual.CashMoving())
	assert.False(t, SourceRentAccrual.CashMoving())
	assert.False(t, SourceDeferredRecognition.CashMoving())
	assert.False(t, SourceReversal.CashMoving())
}
