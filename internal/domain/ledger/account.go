package ledger

import (
	"fmt"

	"github.com/resledger/backend/internal/domain/shared"
)

// AccountType classifies an account in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the type is a valid AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// DebitNormal returns true if the account type carries a debit-normal
// balance (debits increase it)
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Well-known account codes in the default chart. Sub-ledger accounts
// (per-vendor payables, per-role petty cash) are allocated from six-digit
// ranges disjoint from the four-digit chart.
const (
	AccountBank             = "1000"
	AccountReceivable       = "1100"
	AccountPettyCashControl = "1200"
	AccountPayable          = "2000"
	AccountDeferredIncome   = "2100"
	AccountTenantDeposits   = "2200"
	AccountOwnerEquity      = "3000"
	AccountRentalIncome     = "4000"
	AccountAdminFeeIncome   = "4100"
	AccountMaintenance      = "5000"
	AccountCleaning         = "5100"
	AccountSecurity         = "5200"
	AccountLandscaping      = "5300"
	AccountSupplies         = "5400"
	AccountProfessionalFee  = "5500"
	AccountUtilities        = "5600"
	AccountGeneralExpense   = "5900"
)

// Sub-ledger code ranges
const (
	PettyCashCodeBase     = 120000
	VendorPayableCodeBase = 200000
)

// Account is an aggregate root representing one financial account in the
// chart of accounts. Accounts are created lazily by the account resolver
// and are never deleted, only deactivated. The type is immutable once
// postings reference the account.
type Account struct {
	shared.BaseAggregateRoot
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
	Category string      `json:"category"`
	// SubledgerKey identifies the counterparty a lazily created sub-ledger
	// account belongs to, e.g. "vendor:<id>" or "role:housekeeper".
	// Empty for chart accounts.
	SubledgerKey string `json:"subledger_key,omitempty"`
	Active       bool   `json:"active"`
}

// NewAccount creates a new account
func NewAccount(code, name string, accountType AccountType, category string) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", fmt.Sprintf("Account type %q is not valid", accountType))
	}

	a := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              accountType,
		Category:          category,
		Active:            true,
	}

	a.AddDomainEvent(NewAccountCreatedEvent(a))

	return a, nil
}

// NewSubledgerAccount creates a lazily allocated counterparty account
func NewSubledgerAccount(code, name string, accountType AccountType, category, subledgerKey string) (*Account, error) {
	a, err := NewAccount(code, name, accountType, category)
	if err != nil {
		return nil, err
	}
	a.SubledgerKey = subledgerKey
	return a, nil
}

// Deactivate marks the account inactive. Accounts are never deleted
// because posted entries reference them.
func (a *Account) Deactivate() error {
	if !a.Active {
		return shared.NewDomainError("INVALID_STATE", "Account is already inactive")
	}
	a.Active = false
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountDeactivatedEvent(a))
	return nil
}

// Reactivate marks the account active again
func (a *Account) Reactivate() {
	a.Active = true
	a.IncrementVersion()
}

// DefaultChart returns the accounts seeded on first run. Every code the
// resolver can fall back to must exist here.
func DefaultChart() []Account {
	specs := []struct {
		code, name, category string
		accountType          AccountType
	}{
		{AccountBank, "Bank", "cash", AccountTypeAsset},
		{AccountReceivable, "Accounts Receivable", "receivable", AccountTypeAsset},
		{AccountPettyCashControl, "Petty Cash Control", "petty_cash", AccountTypeAsset},
		{AccountPayable, "Accounts Payable", "payable", AccountTypeLiability},
		{AccountDeferredIncome, "Deferred Income", "deferred", AccountTypeLiability},
		{AccountTenantDeposits, "Tenant Deposits Held", "deposits", AccountTypeLiability},
		{AccountOwnerEquity, "Owner Equity", "equity", AccountTypeEquity},
		{AccountRentalIncome, "Rental Income", "rental", AccountTypeIncome},
		{AccountAdminFeeIncome, "Admin Fee Income", "fees", AccountTypeIncome},
		{AccountMaintenance, "Property Maintenance", "maintenance", AccountTypeExpense},
		{AccountCleaning, "Cleaning Services", "cleaning", AccountTypeExpense},
		{AccountSecurity, "Security Services", "security", AccountTypeExpense},
		{AccountLandscaping, "Landscaping", "landscaping", AccountTypeExpense},
		{AccountSupplies, "Supplies", "supplies", AccountTypeExpense},
		{AccountProfessionalFee, "Professional Fees", "professional_fees", AccountTypeExpense},
		{AccountUtilities, "Utilities", "utilities", AccountTypeExpense},
		{AccountGeneralExpense, "General Expense", "general", AccountTypeExpense},
	}

	chart := make([]Account, 0, len(specs))
	for _, s := range specs {
		chart = append(chart, Account{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Code:              s.code,
			Name:              s.name,
			Type:              s.accountType,
			Category:          s.category,
			Active:            true,
		})
	}
	return chart
}
