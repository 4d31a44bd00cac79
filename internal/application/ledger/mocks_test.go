package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/billing"
	"github.com/resledger/backend/internal/domain/expense"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/partner"
	"github.com/resledger/backend/internal/domain/pettycash"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) SaveWithEntry(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateEntryStatus(ctx context.Context, entry *ledger.TransactionEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindEntryByID(ctx context.Context, id uuid.UUID) (*ledger.TransactionEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransactionEntry), args.Error(1)
}

func (m *MockTransactionRepository) FindEntryBySource(ctx context.Context, source ledger.EntrySource, sourceID string) (*ledger.TransactionEntry, error) {
	args := m.Called(ctx, source, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransactionEntry), args.Error(1)
}

func (m *MockTransactionRepository) FindRecentEntries(ctx context.Context, source ledger.EntrySource, since time.Time) ([]ledger.TransactionEntry, error) {
	args := m.Called(ctx, source, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.TransactionEntry), args.Error(1)
}

func (m *MockTransactionRepository) ListEntries(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.TransactionEntry), args.Error(1)
}

func (m *MockTransactionRepository) SumAccount(ctx context.Context, accountCode string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountCode)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockTransactionRepository) SumAccountForStudent(ctx context.Context, accountCode string, studentID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountCode, studentID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockTransactionRepository) SumAccruedRent(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SumRentSettled(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SumDeferredForPeriod(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error) {
	args := m.Called(ctx, studentID, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) AccountActivity(ctx context.Context) ([]ledger.AccountActivity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.AccountActivity), args.Error(1)
}

// MockAccountRepository is a mock implementation of ledger.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, code string) (*ledger.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindBySubledgerKey(ctx context.Context, key string) (*ledger.Account, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context) ([]ledger.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) NextSubledgerCode(ctx context.Context, base int) (string, error) {
	args := m.Called(ctx, base)
	return args.String(0), args.Error(1)
}

func (m *MockAccountRepository) SeedChart(ctx context.Context, chart []ledger.Account) error {
	args := m.Called(ctx, chart)
	return args.Error(0)
}

// MockLeaseRepository is a mock implementation of billing.LeaseRepository
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveByStudent(ctx context.Context, studentID uuid.UUID) (*billing.Lease, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Save(ctx context.Context, lease *billing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

// MockDebtorRepository is a mock implementation of billing.DebtorRepository
type MockDebtorRepository struct {
	mock.Mock
}

func (m *MockDebtorRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) (*billing.Debtor, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Debtor), args.Error(1)
}

func (m *MockDebtorRepository) Save(ctx context.Context, debtor *billing.Debtor) error {
	args := m.Called(ctx, debtor)
	return args.Error(0)
}

// MockVendorRepository is a mock implementation of partner.VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Vendor), args.Error(1)
}

func (m *MockVendorRepository) SearchByName(ctx context.Context, name string) (*partner.Vendor, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Vendor), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

// MockExpenseRepository is a mock implementation of expense.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByRequestID(ctx context.Context, requestID string) (*expense.Expense, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindPending(ctx context.Context) ([]expense.Expense, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, exp *expense.Expense) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

// MockAllocationRepository is a mock implementation of pettycash.AllocationRepository
type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*pettycash.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pettycash.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindActiveByRole(ctx context.Context, role string) (*pettycash.Allocation, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pettycash.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) FindAll(ctx context.Context) ([]pettycash.Allocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pettycash.Allocation), args.Error(1)
}

func (m *MockAllocationRepository) Save(ctx context.Context, allocation *pettycash.Allocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

// MockUsageRepository is a mock implementation of pettycash.UsageRepository
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) FindByID(ctx context.Context, id uuid.UUID) (*pettycash.Usage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pettycash.Usage), args.Error(1)
}

func (m *MockUsageRepository) FindByAllocation(ctx context.Context, allocationID uuid.UUID) ([]pettycash.Usage, error) {
	args := m.Called(ctx, allocationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pettycash.Usage), args.Error(1)
}

func (m *MockUsageRepository) FindPending(ctx context.Context) ([]pettycash.Usage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pettycash.Usage), args.Error(1)
}

func (m *MockUsageRepository) Save(ctx context.Context, usage *pettycash.Usage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

// fakeIdempotencyStore is a map-backed stand-in for the real stores,
// local to the package to keep test dependencies within the layer
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

// fakeBalanceInvalidator records which account codes the facade asked to
// drop from the balance cache
type fakeBalanceInvalidator struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (f *fakeBalanceInvalidator) InvalidateAccounts(_ context.Context, codes ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, codes...)
	f.calls++
}
