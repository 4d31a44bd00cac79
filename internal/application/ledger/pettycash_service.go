package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/expense"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/pettycash"
	"github.com/resledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PettyCashService manages role floats and the spends drawn from them.
// Allocation moves cash from the bank to a role's holder account; an
// approved usage moves it from the holder account to an expense — or,
// when the spend settles a previously accrued request, to that accrual's
// liability account so the expense is not recognized twice.
type PettyCashService struct {
	posting        *PostingService
	resolver       *AccountResolver
	allocationRepo pettycash.AllocationRepository
	usageRepo      pettycash.UsageRepository
	expenseRepo    expense.ExpenseRepository
	txRepo         ledger.TransactionRepository
	logger         *zap.Logger
}

// NewPettyCashService creates a new PettyCashService
func NewPettyCashService(
	posting *PostingService,
	resolver *AccountResolver,
	allocationRepo pettycash.AllocationRepository,
	usageRepo pettycash.UsageRepository,
	expenseRepo expense.ExpenseRepository,
	txRepo ledger.TransactionRepository,
	logger *zap.Logger,
) *PettyCashService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PettyCashService{
		posting:        posting,
		resolver:       resolver,
		allocationRepo: allocationRepo,
		usageRepo:      usageRepo,
		expenseRepo:    expenseRepo,
		txRepo:         txRepo,
		logger:         logger,
	}
}

// Allocate hands a float to a staff role and posts the cash movement
// from the bank to the role's holder account
func (s *PettyCashService) Allocate(ctx context.Context, ev PettyCashAllocationEvent) (*pettycash.Allocation, *PostingResult, error) {
	allocation, err := pettycash.NewAllocation(ev.Role, ev.ResidenceID, ev.Amount, ev.AllocatedAt)
	if err != nil {
		return nil, nil, err
	}
	if ev.AllocationID != uuid.Nil {
		allocation.ID = ev.AllocationID
	}

	holder, err := s.resolver.RoleCashAccount(ctx, ev.Role)
	if err != nil {
		return nil, nil, err
	}
	allocation.SetHolderAccount(holder.Code)

	result, err := s.posting.Post(ctx, PostingRequest{
		Date:        ev.AllocatedAt,
		Description: fmt.Sprintf("Petty cash float for %s", ev.Role),
		Type:        ledger.TransactionTypePettyCash,
		Reference:   allocation.ID.String(),
		ResidenceID: ev.ResidenceID,
		Source:      ledger.SourcePettyCashAllocation,
		SourceID:    allocation.ID.String(),
		Lines: []ledger.LineEntry{
			ledger.DebitLine(holder.Code, ledger.AccountTypeAsset, ev.Amount, "Float allocated to "+ev.Role),
			ledger.CreditLine(ledger.AccountBank, ledger.AccountTypeAsset, ev.Amount, "Petty cash withdrawal"),
		},
		CreatedBy: ev.CreatedBy,
	})
	if err != nil {
		return nil, nil, err
	}
	if result.Duplicate {
		existing, err := s.allocationRepo.FindByID(ctx, allocation.ID)
		if err != nil {
			return nil, nil, err
		}
		return existing, result, nil
	}

	if err := s.allocationRepo.Save(ctx, allocation); err != nil {
		return nil, nil, err
	}

	s.logger.Info("allocated petty cash float",
		zap.String("allocation_id", allocation.ID.String()),
		zap.String("role", ev.Role),
		zap.String("amount", ev.Amount.StringFixed(2)))

	return allocation, result, nil
}

// CreateUsage records a pending spend against a role's active float.
// Nothing is posted until the usage is approved. A redelivered event
// returns the stored usage untouched, whatever state it has reached.
func (s *PettyCashService) CreateUsage(ctx context.Context, ev PettyCashUsageEvent) (*pettycash.Usage, error) {
	if ev.UsageID != uuid.Nil {
		existing, err := s.usageRepo.FindByID(ctx, ev.UsageID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	allocation, err := s.allocationRepo.FindActiveByRole(ctx, ev.Role)
	if err != nil {
		return nil, err
	}
	if allocation == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("No active float for role %s", ev.Role))
	}

	usage, err := pettycash.NewUsage(allocation.ID, ev.Description, ev.Category, ev.Amount, ev.UsedAt)
	if err != nil {
		return nil, err
	}
	if ev.UsageID != uuid.Nil {
		usage.ID = ev.UsageID
	}
	if ev.RequestID != "" {
		usage.LinkRequest(ev.RequestID)
	}

	if err := s.usageRepo.Save(ctx, usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// ApproveUsage approves a pending spend: checks the float covers it,
// posts the entry and draws the float down. Overspending the float is
// rejected with ErrInsufficientFunds and nothing is written.
func (s *PettyCashService) ApproveUsage(ctx context.Context, usageID uuid.UUID, approvedBy string) (*PostingResult, error) {
	usage, err := s.usageRepo.FindByID(ctx, usageID)
	if err != nil {
		return nil, err
	}
	if usage == nil {
		return nil, shared.ErrNotFound
	}
	if usage.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Usage is already %s", usage.Status))
	}

	allocation, err := s.allocationRepo.FindByID(ctx, usage.AllocationID)
	if err != nil {
		return nil, err
	}
	if allocation == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Allocation not found for usage")
	}

	if err := allocation.RecordUsage(usage.Amount); err != nil {
		return nil, err
	}

	debitCode, debitType, metadata, err := s.usageDebitTarget(ctx, usage)
	if err != nil {
		return nil, err
	}

	if allocation.HolderAccountCode == "" {
		holder, err := s.resolver.RoleCashAccount(ctx, allocation.Role)
		if err != nil {
			return nil, err
		}
		allocation.SetHolderAccount(holder.Code)
	}

	result, err := s.posting.Post(ctx, PostingRequest{
		Date:        usage.UsedAt,
		Description: usage.Description,
		Type:        ledger.TransactionTypePettyCash,
		Reference:   usage.ID.String(),
		ResidenceID: allocation.ResidenceID,
		// usages inherit the allocation's residence, so the default is
		// only a last resort for legacy floats recorded without one
		AllowDefaultResidence: true,
		Source:                ledger.SourcePettyCashExpense,
		SourceID:              usage.ID.String(),
		Lines: []ledger.LineEntry{
			ledger.DebitLine(debitCode, debitType, usage.Amount, usage.Description),
			ledger.CreditLine(allocation.HolderAccountCode, ledger.AccountTypeAsset, usage.Amount, "Petty cash spend by "+allocation.Role),
		},
		Metadata:  metadata,
		CreatedBy: approvedBy,
	})
	if err != nil {
		return nil, err
	}
	if result.Duplicate {
		return result, nil
	}

	if err := usage.Approve(approvedBy, result.Transaction.Date); err != nil {
		return nil, err
	}
	if err := s.usageRepo.Save(ctx, usage); err != nil {
		return nil, err
	}
	if err := s.allocationRepo.Save(ctx, allocation); err != nil {
		return nil, err
	}

	s.logger.Info("approved petty cash usage",
		zap.String("usage_id", usage.ID.String()),
		zap.String("role", allocation.Role),
		zap.String("debit_account", debitCode),
		zap.String("remaining", allocation.RemainingAmount.StringFixed(2)))

	return result, nil
}

// usageDebitTarget decides where an approved spend lands. A spend that
// settles a previously accrued request debits that accrual's liability
// account; everything else debits the resolved expense account.
func (s *PettyCashService) usageDebitTarget(ctx context.Context, usage *pettycash.Usage) (string, ledger.AccountType, ledger.Metadata, error) {
	metadata := ledger.Metadata{ledger.MetaCategory: usage.Category}

	if usage.RequestID != "" {
		exp, err := s.expenseRepo.FindByRequestID(ctx, usage.RequestID)
		if err != nil {
			return "", "", nil, err
		}
		if exp != nil && exp.LiabilityAccountCode != "" {
			metadata[ledger.MetaExpenseID] = exp.ID.String()
			metadata[ledger.MetaSettledLiability] = exp.LiabilityAccountCode
			return exp.LiabilityAccountCode, ledger.AccountTypeLiability, metadata, nil
		}

		// no expense record: fall back to the accrual entry itself
		accrual, err := s.txRepo.FindEntryBySource(ctx, ledger.SourceExpenseAccrual, usage.RequestID)
		if err != nil {
			return "", "", nil, err
		}
		if accrual != nil {
			if code := accrual.CreditedAccount(ledger.AccountTypeLiability); code != "" {
				metadata[ledger.MetaSettledLiability] = code
				return code, ledger.AccountTypeLiability, metadata, nil
			}
		}
	}

	account, err := s.resolver.ExpenseAccount(ctx, ledger.ResolutionInput{
		Description: usage.Description,
		Category:    usage.Category,
	})
	if err != nil {
		return "", "", nil, err
	}
	return account.Code, account.Type, metadata, nil
}

// RejectUsage rejects a pending spend. Nothing is posted and the float
// is untouched.
func (s *PettyCashService) RejectUsage(ctx context.Context, usageID uuid.UUID, rejectedBy string) error {
	usage, err := s.usageRepo.FindByID(ctx, usageID)
	if err != nil {
		return err
	}
	if usage == nil {
		return shared.ErrNotFound
	}
	if err := usage.Reject(rejectedBy, s.posting.Now()); err != nil {
		return err
	}
	return s.usageRepo.Save(ctx, usage)
}

// RecordUsage is the one-step path for already-reviewed spends: create
// the usage and approve it in sequence. A redelivered event finds the
// usage already approved and returns the original posting instead of
// re-running the approval.
func (s *PettyCashService) RecordUsage(ctx context.Context, ev PettyCashUsageEvent) (*PostingResult, error) {
	usage, err := s.CreateUsage(ctx, ev)
	if err != nil {
		return nil, err
	}
	if usage.Status == pettycash.UsageStatusApproved {
		entry, err := s.txRepo.FindEntryBySource(ctx, ledger.SourcePettyCashExpense, usage.ID.String())
		if err != nil {
			return nil, err
		}
		if entry != nil {
			tx, err := s.txRepo.FindTransactionByID(ctx, entry.TransactionID)
			if err != nil {
				return nil, err
			}
			return &PostingResult{Transaction: tx, Entry: entry, Duplicate: true}, nil
		}
	}
	return s.ApproveUsage(ctx, usage.ID, ev.ApprovedBy)
}
