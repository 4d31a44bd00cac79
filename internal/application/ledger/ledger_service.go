package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
)

// BalanceInvalidator drops cached balances for the given account codes
// after a posting changed them. The cache itself lives outside the
// ledger core; this is the only notification it receives.
type BalanceInvalidator interface {
	InvalidateAccounts(ctx context.Context, codes ...string)
}

// LedgerService is the facade the rest of the system talks to. It
// dispatches each business event to the service that knows how to post
// it, so callers never build ledger lines themselves.
type LedgerService struct {
	payments    *PaymentService
	expenses    *ExpenseService
	pettyCash   *PettyCashService
	posting     *PostingService
	balances    *BalanceService
	invalidator BalanceInvalidator
}

// LedgerServiceOption is a functional option for configuring LedgerService
type LedgerServiceOption func(*LedgerService)

// WithBalanceInvalidator wires the balance cache's invalidation hook
func WithBalanceInvalidator(invalidator BalanceInvalidator) LedgerServiceOption {
	return func(s *LedgerService) {
		s.invalidator = invalidator
	}
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	payments *PaymentService,
	expenses *ExpenseService,
	pettyCash *PettyCashService,
	posting *PostingService,
	balances *BalanceService,
	opts ...LedgerServiceOption,
) *LedgerService {
	s := &LedgerService{
		payments:  payments,
		expenses:  expenses,
		pettyCash: pettyCash,
		posting:   posting,
		balances:  balances,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostEvent routes one business event to its posting path. Unknown
// event kinds are rejected, not silently dropped.
func (s *LedgerService) PostEvent(ctx context.Context, event any) (*PostingResult, error) {
	result, err := s.dispatch(ctx, event)
	if err != nil {
		return nil, err
	}
	s.invalidateBalances(ctx, result)
	return result, nil
}

func (s *LedgerService) dispatch(ctx context.Context, event any) (*PostingResult, error) {
	switch ev := event.(type) {
	case MaintenanceApprovalEvent:
		return s.expenses.RecordApproval(ctx, ev)
	case VendorPaymentEvent:
		return s.expenses.RecordVendorPayment(ctx, ev)
	case StudentPaymentEvent:
		allocation, err := s.payments.RecordPayment(ctx, ev)
		if err != nil {
			return nil, err
		}
		return allocation.Result, nil
	case PettyCashAllocationEvent:
		_, result, err := s.pettyCash.Allocate(ctx, ev)
		return result, err
	case PettyCashUsageEvent:
		return s.pettyCash.RecordUsage(ctx, ev)
	default:
		return nil, shared.NewDomainError("UNSUPPORTED_EVENT", fmt.Sprintf("No posting path for event type %T", event))
	}
}

// Payments exposes the payment allocator
func (s *LedgerService) Payments() *PaymentService {
	return s.payments
}

// Expenses exposes the expense lifecycle service
func (s *LedgerService) Expenses() *ExpenseService {
	return s.expenses
}

// PettyCash exposes the petty cash service
func (s *LedgerService) PettyCash() *PettyCashService {
	return s.pettyCash
}

// Balances exposes the balance query service
func (s *LedgerService) Balances() *BalanceService {
	return s.balances
}

// Reverse posts the offsetting correction for a posted entry
func (s *LedgerService) Reverse(ctx context.Context, entryID uuid.UUID, reason, requestedBy string) (*PostingResult, error) {
	result, err := s.posting.Reverse(ctx, entryID, reason, requestedBy)
	if err != nil {
		return nil, err
	}
	s.invalidateBalances(ctx, result)
	return result, nil
}

// invalidateBalances drops the cached balances of every account a fresh
// posting touched. Duplicates changed nothing, so they drop nothing.
func (s *LedgerService) invalidateBalances(ctx context.Context, result *PostingResult) {
	if s.invalidator == nil || result == nil || result.Duplicate || result.Entry == nil {
		return
	}
	codes := make([]string, 0, len(result.Entry.Lines))
	for _, line := range result.Entry.Lines {
		codes = append(codes, line.AccountCode)
	}
	s.invalidator.InvalidateAccounts(ctx, codes...)
}
