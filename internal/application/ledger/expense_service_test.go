package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/expense"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type expenseFixture struct {
	txRepo      *MockTransactionRepository
	accountRepo *MockAccountRepository
	vendorRepo  *MockVendorRepository
	expenseRepo *MockExpenseRepository
	svc         *ExpenseService
	captured    *ledger.Transaction
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()
	f := &expenseFixture{
		txRepo:      new(MockTransactionRepository),
		accountRepo: new(MockAccountRepository),
		vendorRepo:  new(MockVendorRepository),
		expenseRepo: new(MockExpenseRepository),
	}
	posting := newGuardedPostingService(f.txRepo, newFakeIdempotencyStore())
	resolver := NewAccountResolver(f.accountRepo, f.vendorRepo, nil)
	f.svc = NewExpenseService(posting, resolver, f.expenseRepo, nil)
	return f
}

func (f *expenseFixture) expectSave() {
	f.txRepo.On("SaveWithEntry", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).
		Run(func(args mock.Arguments) {
			f.captured = args.Get(1).(*ledger.Transaction)
		}).
		Return(nil)
}

func (f *expenseFixture) expectChartAccount(t *testing.T, code string, accountType ledger.AccountType) {
	t.Helper()
	account, err := ledger.NewAccount(code, "test account "+code, accountType, "test")
	require.NoError(t, err)
	f.accountRepo.On("FindByCode", mock.Anything, code).Return(account, nil)
}

func TestExpenseService_RecordApproval(t *testing.T) {
	ctx := context.Background()
	residenceID := uuid.New()
	approvedAt := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)

	t.Run("accrues against general payables when no vendor is known", func(t *testing.T) {
		f := newExpenseFixture(t)
		f.expectChartAccount(t, ledger.AccountMaintenance, ledger.AccountTypeExpense)
		f.expectSave()
		var savedExp *expense.Expense
		f.expenseRepo.On("Save", ctx, mock.AnythingOfType("*expense.Expense")).
			Run(func(args mock.Arguments) { savedExp = args.Get(1).(*expense.Expense) }).
			Return(nil)

		result, err := f.svc.RecordApproval(ctx, MaintenanceApprovalEvent{
			RequestID:   "REQ-1",
			Description: "Fix leaking geyser",
			Amount:      decimal.NewFromInt(1200),
			ResidenceID: residenceID,
			ApprovedBy:  "manager",
			ApprovedAt:  approvedAt,
		})
		require.NoError(t, err)
		assert.False(t, result.Duplicate)

		entry := f.captured.Entry
		assert.Equal(t, ledger.SourceExpenseAccrual, entry.Source)
		assert.Equal(t, "REQ-1", entry.SourceID)
		assert.Equal(t, ledger.AccountPayable, entry.CreditedAccount(ledger.AccountTypeLiability))

		require.NotNil(t, savedExp)
		assert.Equal(t, ledger.AccountPayable, savedExp.LiabilityAccountCode)
		assert.True(t, savedExp.IsAccrued())
		assert.Nil(t, savedExp.VendorID)
	})

	t.Run("allocates a vendor payable sub-ledger on first use", func(t *testing.T) {
		f := newExpenseFixture(t)
		vendor, err := partner.NewVendor("Acme Plumbing", "Acme Plumbing")
		require.NoError(t, err)

		f.expectChartAccount(t, ledger.AccountMaintenance, ledger.AccountTypeExpense)
		f.vendorRepo.On("SearchByName", ctx, "Acme Plumbing").Return(vendor, nil)
		f.accountRepo.On("FindBySubledgerKey", ctx, "vendor:"+vendor.ID.String()).Return(nil, nil)
		f.accountRepo.On("NextSubledgerCode", ctx, ledger.VendorPayableCodeBase).Return("200001", nil)
		f.accountRepo.On("Save", ctx, mock.MatchedBy(func(a *ledger.Account) bool {
			return a.Code == "200001" && a.SubledgerKey == "vendor:"+vendor.ID.String()
		})).Return(nil)
		f.vendorRepo.On("Save", ctx, vendor).Return(nil)
		f.expectSave()
		f.expenseRepo.On("Save", ctx, mock.AnythingOfType("*expense.Expense")).Return(nil)

		_, err = f.svc.RecordApproval(ctx, MaintenanceApprovalEvent{
			RequestID:   "REQ-2",
			Description: "Replace geyser",
			Category:    "maintenance",
			Amount:      decimal.NewFromInt(4500),
			ResidenceID: residenceID,
			VendorName:  "Acme Plumbing",
			ApprovedBy:  "manager",
			ApprovedAt:  approvedAt,
		})
		require.NoError(t, err)

		entry := f.captured.Entry
		assert.Equal(t, "200001", entry.CreditedAccount(ledger.AccountTypeLiability))
		assert.Equal(t, vendor.ID.String(), entry.Metadata[ledger.MetaVendorID])
		assert.Equal(t, "200001", vendor.PayableAccountCode)
	})

	t.Run("reuses the vendor's assigned payable account", func(t *testing.T) {
		f := newExpenseFixture(t)
		vendor, err := partner.NewVendor("Acme Plumbing", "Acme Plumbing")
		require.NoError(t, err)
		require.NoError(t, vendor.AssignPayableAccount("200003"))
		vendorID := vendor.ID

		f.expectChartAccount(t, ledger.AccountMaintenance, ledger.AccountTypeExpense)
		f.vendorRepo.On("FindByID", ctx, vendorID).Return(vendor, nil)
		payable, err := ledger.NewSubledgerAccount("200003", "Payable - Acme Plumbing", ledger.AccountTypeLiability, "payable", "vendor:"+vendorID.String())
		require.NoError(t, err)
		f.accountRepo.On("FindByCode", ctx, "200003").Return(payable, nil)
		f.expectSave()
		f.expenseRepo.On("Save", ctx, mock.Anything).Return(nil)

		_, err = f.svc.RecordApproval(ctx, MaintenanceApprovalEvent{
			RequestID:   "REQ-3",
			Description: "Unblock drain",
			Amount:      decimal.NewFromInt(800),
			ResidenceID: residenceID,
			VendorID:    &vendorID,
			ApprovedAt:  approvedAt,
		})
		require.NoError(t, err)
		assert.Equal(t, "200003", f.captured.Entry.CreditedAccount(ledger.AccountTypeLiability))
		f.accountRepo.AssertNotCalled(t, "NextSubledgerCode", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing request id and bad amounts", func(t *testing.T) {
		f := newExpenseFixture(t)
		_, err := f.svc.RecordApproval(ctx, MaintenanceApprovalEvent{Amount: decimal.NewFromInt(10), ResidenceID: residenceID})
		assert.Error(t, err)
		_, err = f.svc.RecordApproval(ctx, MaintenanceApprovalEvent{RequestID: "REQ-4", ResidenceID: residenceID})
		assert.Error(t, err)
	})
}

func TestExpenseService_RecordVendorPayment(t *testing.T) {
	ctx := context.Background()
	residenceID := uuid.New()
	paidAt := time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)

	accruedExpense := func(t *testing.T, liability string) *expense.Expense {
		t.Helper()
		exp, err := expense.NewExpense("Replace geyser", "maintenance", decimal.NewFromInt(4500), residenceID, "REQ-10")
		require.NoError(t, err)
		require.NoError(t, exp.AttachAccrual(uuid.New(), liability))
		return exp
	}

	t.Run("settles the exact liability the accrual credited", func(t *testing.T) {
		f := newExpenseFixture(t)
		exp := accruedExpense(t, "200001")

		f.expenseRepo.On("FindByRequestID", ctx, "REQ-10").Return(exp, nil)
		f.expectSave()
		f.expenseRepo.On("Save", ctx, exp).Return(nil)

		result, err := f.svc.RecordVendorPayment(ctx, VendorPaymentEvent{
			RequestID: "REQ-10",
			Amount:    decimal.NewFromInt(4500),
			Reference: "EFT-555",
			PaidAt:    paidAt,
			CreatedBy: "finance",
		})
		require.NoError(t, err)
		assert.False(t, result.Duplicate)

		entry := f.captured.Entry
		assert.Equal(t, ledger.SourceVendorPayment, entry.Source)
		assert.Equal(t, "EFT-555", entry.SourceID, "payment reference is the source id")
		require.Len(t, entry.Lines, 2)
		assert.Equal(t, "200001", entry.Lines[0].AccountCode)
		assert.True(t, entry.Lines[0].Debit.Equal(decimal.NewFromInt(4500)))
		assert.Equal(t, ledger.AccountBank, entry.Lines[1].AccountCode)
		assert.Equal(t, "200001", entry.Metadata[ledger.MetaSettledLiability])

		assert.Equal(t, expense.PaymentStatusPaid, exp.PaymentStatus)
		// the expense's residence backfills the event's missing one
		assert.Equal(t, residenceID, f.captured.ResidenceID)
	})

	t.Run("falls back to the request id without a reference", func(t *testing.T) {
		f := newExpenseFixture(t)
		exp := accruedExpense(t, ledger.AccountPayable)

		f.expenseRepo.On("FindByRequestID", ctx, "REQ-10").Return(exp, nil)
		f.expectSave()
		f.expenseRepo.On("Save", ctx, exp).Return(nil)

		_, err := f.svc.RecordVendorPayment(ctx, VendorPaymentEvent{
			RequestID: "REQ-10",
			Amount:    decimal.NewFromInt(4500),
			PaidAt:    paidAt,
		})
		require.NoError(t, err)
		assert.Equal(t, "REQ-10", f.captured.Entry.SourceID)
	})

	t.Run("rejects payment with no accrued expense", func(t *testing.T) {
		f := newExpenseFixture(t)
		f.expenseRepo.On("FindByRequestID", ctx, "REQ-11").Return(nil, nil)

		_, err := f.svc.RecordVendorPayment(ctx, VendorPaymentEvent{
			RequestID: "REQ-11",
			Amount:    decimal.NewFromInt(100),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No accrued expense")
	})

	t.Run("rejects expense without a liability account", func(t *testing.T) {
		f := newExpenseFixture(t)
		exp, err := expense.NewExpense("Unaccrued work", "maintenance", decimal.NewFromInt(100), residenceID, "REQ-12")
		require.NoError(t, err)
		f.expenseRepo.On("FindByRequestID", ctx, "REQ-12").Return(exp, nil)

		_, err = f.svc.RecordVendorPayment(ctx, VendorPaymentEvent{
			RequestID: "REQ-12",
			Amount:    decimal.NewFromInt(100),
		})
		assert.Error(t, err)
	})
}
