package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Basis selects the accounting basis for transaction listings
type Basis string

const (
	BasisCash    Basis = "cash"
	BasisAccrual Basis = "accrual"
)

// TransactionFilter defines filtering options for entry listings
type TransactionFilter struct {
	From        *time.Time
	To          *time.Time
	ResidenceID *uuid.UUID
	StudentID   *uuid.UUID
	Source      *EntrySource
	Status      *EntryStatus
	Basis       Basis
}

// AccountActivity is the summed posted debit/credit activity of one account
type AccountActivity struct {
	AccountCode string
	AccountType AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// FindByCode finds an account by its unique code
	FindByCode(ctx context.Context, code string) (*Account, error)

	// FindBySubledgerKey finds a lazily created sub-ledger account by its
	// counterparty key (e.g. "vendor:<id>", "role:housekeeper")
	FindBySubledgerKey(ctx context.Context, key string) (*Account, error)

	// FindAll returns all accounts
	FindAll(ctx context.Context) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// NextSubledgerCode allocates the next unused code in a six-digit
	// sub-ledger range (e.g. base 200000 yields "200001", "200002", ...)
	NextSubledgerCode(ctx context.Context, base int) (string, error)

	// SeedChart inserts the given accounts if their codes do not exist yet
	SeedChart(ctx context.Context, chart []Account) error
}

// TransactionRepository defines the interface for transaction persistence.
// Posted entries are immutable; the only permitted update is the status
// flip to reversed, which never touches the lines.
type TransactionRepository interface {
	// SaveWithEntry persists the header, its entry and the entry's lines in
	// one atomic write. Returns shared.ErrAlreadyExists when a posted entry
	// with the same (source, source_id) exists.
	SaveWithEntry(ctx context.Context, tx *Transaction) error

	// UpdateEntryStatus persists a status transition (posted -> reversed)
	UpdateEntryStatus(ctx context.Context, entry *TransactionEntry) error

	// FindTransactionByID finds a transaction header with its entry
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindEntryByID finds an entry with its lines
	FindEntryByID(ctx context.Context, id uuid.UUID) (*TransactionEntry, error)

	// FindEntryBySource finds the posted entry for an originating business
	// object, if any
	FindEntryBySource(ctx context.Context, source EntrySource, sourceID string) (*TransactionEntry, error)

	// FindRecentEntries returns posted entries of a source created at or
	// after the given instant (the duplicate-guard recency window)
	FindRecentEntries(ctx context.Context, source EntrySource, since time.Time) ([]TransactionEntry, error)

	// ListEntries lists posted entries matching the filter
	ListEntries(ctx context.Context, filter TransactionFilter) ([]TransactionEntry, error)

	// SumAccount sums posted debits and credits against one account
	SumAccount(ctx context.Context, accountCode string) (debit, credit decimal.Decimal, err error)

	// SumAccountForStudent sums posted debits and credits against one
	// account restricted to entries tagged with the student
	SumAccountForStudent(ctx context.Context, accountCode string, studentID uuid.UUID) (debit, credit decimal.Decimal, err error)

	// SumAccruedRent sums the receivable debits accrued for a student's
	// billing period by rent-accrual postings
	SumAccruedRent(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error)

	// SumRentSettled sums the rent credits already recorded against a
	// student's billing period by payment postings (receivable settlements
	// and deferred-income allocations alike)
	SumRentSettled(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error)

	// SumDeferredForPeriod nets the deferred income still held for a
	// student's billing period (credits less debits, any posted source)
	SumDeferredForPeriod(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error)

	// AccountActivity returns summed posted activity per account,
	// used by the trial balance
	AccountActivity(ctx context.Context) ([]AccountActivity, error)
}
