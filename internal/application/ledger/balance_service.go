package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/partner"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/resledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TrialBalanceRow is one account's summed activity with its natural-sign
// balance
type TrialBalanceRow struct {
	AccountCode string          `json:"account_code"`
	AccountType string          `json:"account_type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceReport sums all posted activity. Balanced is false only
// when the double-entry invariant has been violated, which indicates a
// storage-level defect, not a business condition.
type TrialBalanceReport struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// BalanceService answers balance and listing queries from posted
// entries. Balances are reported with their natural sign: a positive
// asset balance means the account holds value, a positive liability
// balance means the property owes it. Every read is computed from the
// ledger; callers that can tolerate bounded staleness wrap this service
// in the infrastructure cache reader.
type BalanceService struct {
	accountRepo     ledger.AccountRepository
	transactionRepo ledger.TransactionRepository
	vendorRepo      partner.VendorRepository
	logger          *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	accountRepo ledger.AccountRepository,
	transactionRepo ledger.TransactionRepository,
	vendorRepo partner.VendorRepository,
	logger *zap.Logger,
) *BalanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		vendorRepo:      vendorRepo,
		logger:          logger,
	}
}

func naturalBalance(accountType ledger.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if accountType.DebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// AccountBalance returns the natural-sign balance of one account
func (s *BalanceService) AccountBalance(ctx context.Context, code string) (valueobject.Money, error) {
	account, err := s.accountRepo.FindByCode(ctx, code)
	if err != nil {
		return valueobject.ZeroZAR(), err
	}
	if account == nil {
		return valueobject.ZeroZAR(), shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Account %s not found", code))
	}

	debit, credit, err := s.transactionRepo.SumAccount(ctx, code)
	if err != nil {
		return valueobject.ZeroZAR(), err
	}
	return valueobject.NewMoneyZAR(naturalBalance(account.Type, debit, credit)), nil
}

// StudentBalance returns what a student owes: the receivable activity of
// entries tagged with the student. Positive means the student owes the
// property.
func (s *BalanceService) StudentBalance(ctx context.Context, studentID uuid.UUID) (valueobject.Money, error) {
	debit, credit, err := s.transactionRepo.SumAccountForStudent(ctx, ledger.AccountReceivable, studentID)
	if err != nil {
		return valueobject.ZeroZAR(), err
	}
	return valueobject.NewMoneyZAR(debit.Sub(credit)), nil
}

// StudentDeferred returns the advance rent held for a student as a
// liability, not yet recognized as income
func (s *BalanceService) StudentDeferred(ctx context.Context, studentID uuid.UUID) (valueobject.Money, error) {
	debit, credit, err := s.transactionRepo.SumAccountForStudent(ctx, ledger.AccountDeferredIncome, studentID)
	if err != nil {
		return valueobject.ZeroZAR(), err
	}
	return valueobject.NewMoneyZAR(credit.Sub(debit)), nil
}

// VendorBalance returns what the property owes one vendor. Vendors with
// no sub-ledger account yet owe and are owed nothing.
func (s *BalanceService) VendorBalance(ctx context.Context, vendorID uuid.UUID) (valueobject.Money, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return valueobject.ZeroZAR(), err
	}
	if vendor == nil {
		return valueobject.ZeroZAR(), shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Vendor %s not found", vendorID))
	}
	if vendor.PayableAccountCode == "" {
		return valueobject.ZeroZAR(), nil
	}
	return s.AccountBalance(ctx, vendor.PayableAccountCode)
}

// RoleFloatBalance returns the cash held by a staff role's petty cash
// account
func (s *BalanceService) RoleFloatBalance(ctx context.Context, role string) (valueobject.Money, error) {
	account, err := s.accountRepo.FindBySubledgerKey(ctx, "role:"+ledger.NormalizeName(role))
	if err != nil {
		return valueobject.ZeroZAR(), err
	}
	if account == nil {
		return valueobject.ZeroZAR(), nil
	}
	return s.AccountBalance(ctx, account.Code)
}

// ListTransactions lists posted entries. Cash basis restricts the
// listing to entries whose source moved actual money; accrual basis
// returns everything.
func (s *BalanceService) ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionEntry, error) {
	entries, err := s.transactionRepo.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.Basis != ledger.BasisCash {
		return entries, nil
	}
	cash := make([]ledger.TransactionEntry, 0, len(entries))
	for i := range entries {
		if entries[i].Source.CashMoving() {
			cash = append(cash, entries[i])
		}
	}
	return cash, nil
}

// TrialBalance sums all posted activity per account and checks the
// double-entry invariant across the whole ledger
func (s *BalanceService) TrialBalance(ctx context.Context) (*TrialBalanceReport, error) {
	activity, err := s.transactionRepo.AccountActivity(ctx)
	if err != nil {
		return nil, err
	}

	report := &TrialBalanceReport{
		Rows:        make([]TrialBalanceRow, 0, len(activity)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range activity {
		report.Rows = append(report.Rows, TrialBalanceRow{
			AccountCode: a.AccountCode,
			AccountType: a.AccountType.String(),
			Debit:       a.Debit,
			Credit:      a.Credit,
			Balance:     naturalBalance(a.AccountType, a.Debit, a.Credit),
		})
		report.TotalDebit = report.TotalDebit.Add(a.Debit)
		report.TotalCredit = report.TotalCredit.Add(a.Credit)
	}
	report.Balanced = report.TotalDebit.Equal(report.TotalCredit)

	if !report.Balanced {
		s.logger.Error("trial balance out of balance",
			zap.String("total_debit", report.TotalDebit.StringFixed(2)),
			zap.String("total_credit", report.TotalCredit.StringFixed(2)))
	}

	return report, nil
}
