package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/expense"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExpenseService handles the two-posting expense lifecycle: approval
// accrues the expense against a liability, payment settles that same
// liability. The expense hits the income statement exactly once, at
// approval.
type ExpenseService struct {
	posting     *PostingService
	resolver    *AccountResolver
	expenseRepo expense.ExpenseRepository
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	posting *PostingService,
	resolver *AccountResolver,
	expenseRepo expense.ExpenseRepository,
	logger *zap.Logger,
) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		posting:     posting,
		resolver:    resolver,
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// RecordApproval accrues an approved request: debit the resolved expense
// account, credit the vendor's payable sub-ledger (or general payables
// when no vendor is known). Creates the pending Expense record.
func (s *ExpenseService) RecordApproval(ctx context.Context, ev MaintenanceApprovalEvent) (*PostingResult, error) {
	if ev.RequestID == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Request ID is required")
	}
	if ev.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Approval amount must be positive")
	}

	expenseAccount, err := s.resolver.ExpenseAccount(ctx, ledger.ResolutionInput{
		Description: ev.Description,
		Category:    ev.Category,
		RequestType: ev.RequestType,
	})
	if err != nil {
		return nil, err
	}

	liabilityCode := ledger.AccountPayable
	liabilityType := ledger.AccountTypeLiability
	vendor, err := s.resolver.ResolveVendor(ctx, ev.VendorID, ev.VendorName)
	if err != nil {
		return nil, err
	}
	if vendor != nil {
		payable, err := s.resolver.VendorPayableAccount(ctx, vendor)
		if err != nil {
			return nil, err
		}
		liabilityCode = payable.Code
	}

	metadata := ledger.Metadata{
		ledger.MetaCategory: ev.Category,
	}
	if vendor != nil {
		metadata[ledger.MetaVendorID] = vendor.ID.String()
	}

	result, err := s.posting.Post(ctx, PostingRequest{
		Date:        ev.ApprovedAt,
		Description: ev.Description,
		Type:        ledger.TransactionTypeApproval,
		Reference:   ev.RequestID,
		ResidenceID: ev.ResidenceID,
		Source:      ledger.SourceExpenseAccrual,
		SourceID:    ev.RequestID,
		Lines: []ledger.LineEntry{
			ledger.DebitLine(expenseAccount.Code, expenseAccount.Type, ev.Amount, ev.Description),
			ledger.CreditLine(liabilityCode, liabilityType, ev.Amount, "Accrued: "+ev.Description),
		},
		Metadata:  metadata,
		CreatedBy: ev.ApprovedBy,
	})
	if err != nil {
		return nil, err
	}
	if result.Duplicate {
		return result, nil
	}

	exp, err := expense.NewExpense(ev.Description, ev.Category, ev.Amount, ev.ResidenceID, ev.RequestID)
	if err != nil {
		return nil, err
	}
	if err := exp.AttachAccrual(result.Transaction.ID, liabilityCode); err != nil {
		return nil, err
	}
	if vendor != nil {
		exp.SetVendor(vendor.ID)
	}
	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}

	s.logger.Info("accrued expense",
		zap.String("request_id", ev.RequestID),
		zap.String("expense_account", expenseAccount.Code),
		zap.String("liability_account", liabilityCode),
		zap.String("amount", ev.Amount.StringFixed(2)))

	return result, nil
}

// RecordVendorPayment settles the liability an approval accrued: debit
// the exact liability account the accrual credited, credit the bank.
// Marks the expense paid.
func (s *ExpenseService) RecordVendorPayment(ctx context.Context, ev VendorPaymentEvent) (*PostingResult, error) {
	if ev.RequestID == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Request ID is required")
	}
	if ev.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Payment amount must be positive")
	}

	exp, err := s.expenseRepo.FindByRequestID(ctx, ev.RequestID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("No accrued expense for request %s", ev.RequestID))
	}
	if exp.LiabilityAccountCode == "" {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Expense for request %s has no liability account", ev.RequestID))
	}

	sourceID := ev.Reference
	if sourceID == "" {
		sourceID = ev.RequestID
	}

	metadata := ledger.Metadata{
		ledger.MetaExpenseID:        exp.ID.String(),
		ledger.MetaSettledLiability: exp.LiabilityAccountCode,
		ledger.MetaPaymentMethod:    ev.Method,
	}
	if exp.VendorID != nil {
		metadata[ledger.MetaVendorID] = exp.VendorID.String()
	}

	residenceID := ev.ResidenceID
	if residenceID == uuid.Nil {
		residenceID = exp.ResidenceID
	}

	result, err := s.posting.Post(ctx, PostingRequest{
		Date:        ev.PaidAt,
		Description: "Payment: " + exp.Description,
		Type:        ledger.TransactionTypePayment,
		Reference:   ev.Reference,
		ResidenceID: residenceID,
		Source:      ledger.SourceVendorPayment,
		SourceID:    sourceID,
		Lines: []ledger.LineEntry{
			ledger.DebitLine(exp.LiabilityAccountCode, ledger.AccountTypeLiability, ev.Amount, "Settle: "+exp.Description),
			ledger.CreditLine(ledger.AccountBank, ledger.AccountTypeAsset, ev.Amount, "Vendor payment"),
		},
		Metadata:  metadata,
		CreatedBy: ev.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	if result.Duplicate {
		return result, nil
	}

	if err := exp.MarkPaid(result.Transaction.Date); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}

	s.logger.Info("settled vendor liability",
		zap.String("request_id", ev.RequestID),
		zap.String("liability_account", exp.LiabilityAccountCode),
		zap.String("amount", ev.Amount.StringFixed(2)))

	return result, nil
}
