package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/billing"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Payment classifications recorded on posted entries
const (
	ClassificationCurrent     = "current"
	ClassificationPastDue     = "past_due"
	ClassificationAdvance     = "advance"
	ClassificationUnallocated = "unallocated"
)

// PaymentAllocation reports how a student payment was split across the
// ledger. RentSettled went to Accounts Receivable for the target period;
// RentDeferred went to Deferred Income for the target period (advance
// payments); RolledForward went to Deferred Income for the period after
// the target (payment exceeding the period's rent).
type PaymentAllocation struct {
	Result         *PostingResult
	Classification string
	TargetPeriod   billing.Period
	RentSettled    decimal.Decimal
	RentDeferred   decimal.Decimal
	RolledForward  decimal.Decimal
	AdminFee       decimal.Decimal
	Deposit        decimal.Decimal
}

// studentLocks serializes payment processing per student so concurrent
// deliveries cannot both read the same settled-rent figure and
// over-allocate against one period.
type studentLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (l *studentLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// PaymentService classifies and allocates incoming student payments.
// A payment's rent component settles the target period's receivable up
// to what is owed; anything beyond that is a liability (Deferred
// Income), never premature revenue.
type PaymentService struct {
	posting         *PostingService
	transactionRepo ledger.TransactionRepository
	leaseRepo       billing.LeaseRepository
	debtorRepo      billing.DebtorRepository
	locks           studentLocks
	logger          *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	posting *PostingService,
	transactionRepo ledger.TransactionRepository,
	leaseRepo billing.LeaseRepository,
	debtorRepo billing.DebtorRepository,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		posting:         posting,
		transactionRepo: transactionRepo,
		leaseRepo:       leaseRepo,
		debtorRepo:      debtorRepo,
		logger:          logger,
	}
}

// RecordPayment allocates one student payment and posts its entry.
// Redelivered payments return the original posting with Duplicate set.
func (s *PaymentService) RecordPayment(ctx context.Context, ev StudentPaymentEvent) (*PaymentAllocation, error) {
	if ev.PaymentID == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Payment ID is required")
	}
	if ev.StudentID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Student ID is required")
	}
	if ev.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Payment amount must be positive")
	}

	rent, adminFee, deposit := ev.RentAmount, ev.AdminFee, ev.Deposit
	if rent.IsNegative() || adminFee.IsNegative() || deposit.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Payment components cannot be negative")
	}
	componentSum := rent.Add(adminFee).Add(deposit)
	switch {
	case componentSum.IsZero():
		// unstructured payment: the whole amount is treated as rent
		rent = ev.Amount
	case !componentSum.Equal(ev.Amount):
		return nil, shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("Payment components (%s) do not sum to the amount (%s)", componentSum.StringFixed(2), ev.Amount.StringFixed(2)))
	}

	lock := s.locks.get(ev.StudentID)
	lock.Lock()
	defer lock.Unlock()

	date := ev.ReceivedAt
	if date.IsZero() {
		date = s.posting.Now()
	}

	lease, err := s.leaseRepo.FindActiveByStudent(ctx, ev.StudentID)
	if err != nil {
		return nil, err
	}

	paymentPeriod := billing.PeriodOf(date)
	target, parsed := billing.ParsePeriod(ev.PeriodLabel, date)
	if !parsed {
		// a label nobody can read settles the current period
		target = paymentPeriod
	}

	var alloc, excess decimal.Decimal
	classification := ClassificationCurrent
	settleToReceivable := true

	switch {
	case lease == nil:
		// nowhere safe to allocate: hold the whole rent component as a
		// liability for the next period until someone clarifies it
		classification = ClassificationUnallocated
		settleToReceivable = false
		target = paymentPeriod.Next()
		alloc = decimal.Zero
		excess = rent
	default:
		forcedAdvance := date.Before(lease.StartDate) || paymentPeriod.Before(target)
		if forcedAdvance || target.After(paymentPeriod) {
			classification = ClassificationAdvance
			settleToReceivable = false
		} else if target.Before(paymentPeriod) {
			classification = ClassificationPastDue
		}

		// a posted accrual for the period is authoritative; the prorated
		// contractual figure is only the fallback estimate
		accrued, err := s.transactionRepo.SumAccruedRent(ctx, ev.StudentID, target.String())
		if err != nil {
			return nil, err
		}
		if accrued.IsZero() {
			accrued = lease.ExpectedRentFor(target)
		}
		settled, err := s.transactionRepo.SumRentSettled(ctx, ev.StudentID, target.String())
		if err != nil {
			return nil, err
		}

		need := accrued.Sub(settled)
		if need.IsNegative() {
			need = decimal.Zero
		}
		alloc = decimal.Min(rent, need)
		excess = rent.Sub(alloc)
	}

	lines := []ledger.LineEntry{
		ledger.DebitLine(ledger.AccountBank, ledger.AccountTypeAsset, ev.Amount, "Payment received"),
	}
	if adminFee.IsPositive() {
		lines = append(lines, ledger.CreditLine(ledger.AccountReceivable, ledger.AccountTypeAsset, adminFee, "Admin fee settlement"))
	}
	if deposit.IsPositive() {
		lines = append(lines, ledger.CreditLine(ledger.AccountReceivable, ledger.AccountTypeAsset, deposit, "Deposit received"))
	}
	if alloc.IsPositive() {
		if settleToReceivable {
			lines = append(lines, ledger.CreditLine(ledger.AccountReceivable, ledger.AccountTypeAsset, alloc,
				"Rent settlement "+target.String()).WithPeriod(target.String()))
		} else {
			lines = append(lines, ledger.CreditLine(ledger.AccountDeferredIncome, ledger.AccountTypeLiability, alloc,
				"Advance rent "+target.String()).WithPeriod(target.String()))
		}
	}
	if excess.IsPositive() {
		rollPeriod := target.Next()
		if classification == ClassificationUnallocated {
			rollPeriod = target
		}
		lines = append(lines, ledger.CreditLine(ledger.AccountDeferredIncome, ledger.AccountTypeLiability, excess,
			"Deferred rent "+rollPeriod.String()).WithPeriod(rollPeriod.String()))
	}

	txType := ledger.TransactionTypePayment
	switch classification {
	case ClassificationAdvance, ClassificationUnallocated:
		txType = ledger.TransactionTypeAdvancePayment
	case ClassificationPastDue:
		txType = ledger.TransactionTypeDebtSettlement
	}

	residenceID := ev.ResidenceID
	if residenceID == uuid.Nil && lease != nil {
		residenceID = lease.ResidenceID
	}

	studentID := ev.StudentID
	result, err := s.posting.Post(ctx, PostingRequest{
		Date:        date,
		Description: fmt.Sprintf("Student payment %s", ev.PaymentID),
		Type:        txType,
		Reference:   ev.PaymentID,
		ResidenceID: residenceID,
		Source:      ledger.SourcePayment,
		SourceID:    ev.PaymentID,
		Lines:       lines,
		Metadata: ledger.Metadata{
			ledger.MetaStudentID:      studentID.String(),
			ledger.MetaPaymentMethod:  ev.Method,
			ledger.MetaPaymentPeriod:  target.String(),
			ledger.MetaClassification: classification,
		},
		StudentID: &studentID,
		CreatedBy: ev.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	allocation := &PaymentAllocation{
		Result:         result,
		Classification: classification,
		TargetPeriod:   target,
		AdminFee:       adminFee,
		Deposit:        deposit,
	}
	if settleToReceivable {
		allocation.RentSettled = alloc
	} else {
		allocation.RentDeferred = alloc
	}
	allocation.RolledForward = excess

	if result.Duplicate {
		return allocation, nil
	}

	if err := s.updateDebtor(ctx, allocation, adminFee.Add(deposit)); err != nil {
		// the projection is a cache; the posting is already durable
		s.logger.Warn("debtor projection update failed",
			zap.String("student_id", studentID.String()),
			zap.Error(err))
	}

	s.logger.Info("allocated student payment",
		zap.String("payment_id", ev.PaymentID),
		zap.String("student_id", studentID.String()),
		zap.String("classification", classification),
		zap.String("period", target.String()),
		zap.String("rent_settled", allocation.RentSettled.StringFixed(2)),
		zap.String("rent_deferred", allocation.RentDeferred.StringFixed(2)),
		zap.String("rolled_forward", allocation.RolledForward.StringFixed(2)))

	return allocation, nil
}

func (s *PaymentService) updateDebtor(ctx context.Context, allocation *PaymentAllocation, otherSettled decimal.Decimal) error {
	studentID := *allocation.Result.Entry.StudentID
	debtor, err := s.debtorRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if debtor == nil {
		debtor, err = billing.NewDebtor(studentID)
		if err != nil {
			return err
		}
	}

	// only receivable credits reduce what the student owes; deferred
	// amounts sit as our liability until recognized
	receivableSettled := allocation.RentSettled.Add(otherSettled)
	rentForTarget := allocation.RentSettled.Add(allocation.RentDeferred)
	debtor.RecordPayment(allocation.TargetPeriod, rentForTarget, receivableSettled)
	if allocation.RolledForward.IsPositive() && allocation.Classification != ClassificationUnallocated {
		debtor.RecordPayment(allocation.TargetPeriod.Next(), allocation.RolledForward, decimal.Zero)
	}

	return s.debtorRepo.Save(ctx, debtor)
}

// AccrueRent posts the monthly rent charge for a student: the receivable
// rises and rental income is recognized for the period. The accrual is
// what payment allocation measures "owed" against.
func (s *PaymentService) AccrueRent(ctx context.Context, studentID uuid.UUID, period billing.Period, createdBy string) (*PostingResult, error) {
	lease, err := s.leaseRepo.FindActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("No active lease for student %s", studentID))
	}

	amount := lease.ExpectedRentFor(period)
	if amount.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("No rent due for %s before the lease starts", period))
	}

	sourceID := fmt.Sprintf("%s:%s", studentID, period)
	lines := []ledger.LineEntry{
		ledger.DebitLine(ledger.AccountReceivable, ledger.AccountTypeAsset, amount, "Rent due "+period.String()).WithPeriod(period.String()),
		ledger.CreditLine(ledger.AccountRentalIncome, ledger.AccountTypeIncome, amount, "Rental income "+period.String()).WithPeriod(period.String()),
	}

	result, err := s.posting.Post(ctx, PostingRequest{
		Date:        period.Start(),
		Description: fmt.Sprintf("Rent accrual %s", period),
		Type:        ledger.TransactionTypeApproval,
		Reference:   sourceID,
		ResidenceID: lease.ResidenceID,
		Source:      ledger.SourceRentAccrual,
		SourceID:    sourceID,
		Lines:       lines,
		Metadata: ledger.Metadata{
			ledger.MetaStudentID:     studentID.String(),
			ledger.MetaPaymentPeriod: period.String(),
		},
		StudentID: &studentID,
		CreatedBy: createdBy,
	})
	if err != nil {
		return nil, err
	}

	if !result.Duplicate {
		if err := s.chargeDebtor(ctx, studentID, amount); err != nil {
			s.logger.Warn("debtor projection update failed",
				zap.String("student_id", studentID.String()),
				zap.Error(err))
		}
	}

	if err := s.applyDeferred(ctx, lease, studentID, period, createdBy); err != nil {
		return nil, err
	}

	return result, nil
}

// applyDeferred moves a student's prepaid rent for the period out of
// Deferred Income and against the freshly accrued receivable. Without
// this transfer a prepaid student shows the period as owed while the
// settled sums already count it as paid.
func (s *PaymentService) applyDeferred(ctx context.Context, lease *billing.Lease, studentID uuid.UUID, period billing.Period, createdBy string) error {
	deferred, err := s.transactionRepo.SumDeferredForPeriod(ctx, studentID, period.String())
	if err != nil {
		return err
	}
	if !deferred.IsPositive() {
		return nil
	}

	sourceID := fmt.Sprintf("%s:%s", studentID, period)
	result, err := s.posting.Post(ctx, PostingRequest{
		Date:        period.Start(),
		Description: fmt.Sprintf("Advance rent applied %s", period),
		Type:        ledger.TransactionTypeApproval,
		Reference:   sourceID,
		ResidenceID: lease.ResidenceID,
		Source:      ledger.SourceDeferredRecognition,
		SourceID:    sourceID,
		Lines: []ledger.LineEntry{
			ledger.DebitLine(ledger.AccountDeferredIncome, ledger.AccountTypeLiability, deferred, "Deferred rent recognized "+period.String()).WithPeriod(period.String()),
			ledger.CreditLine(ledger.AccountReceivable, ledger.AccountTypeAsset, deferred, "Advance applied "+period.String()).WithPeriod(period.String()),
		},
		Metadata: ledger.Metadata{
			ledger.MetaStudentID:     studentID.String(),
			ledger.MetaPaymentPeriod: period.String(),
		},
		StudentID: &studentID,
		CreatedBy: createdBy,
	})
	if err != nil {
		return err
	}
	if result.Duplicate {
		return nil
	}

	debtor, err := s.debtorRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if debtor == nil {
		debtor, err = billing.NewDebtor(studentID)
		if err != nil {
			return err
		}
	}
	debtor.RecordPayment(period, decimal.Zero, deferred)
	return s.debtorRepo.Save(ctx, debtor)
}

func (s *PaymentService) chargeDebtor(ctx context.Context, studentID uuid.UUID, amount decimal.Decimal) error {
	debtor, err := s.debtorRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if debtor == nil {
		debtor, err = billing.NewDebtor(studentID)
		if err != nil {
			return err
		}
	}
	debtor.RecordCharge(amount)
	return s.debtorRepo.Save(ctx, debtor)
}

// RebuildDebtor replaces a student's projection from posted entries.
// The ledger is the source of truth; the projection is disposable.
func (s *PaymentService) RebuildDebtor(ctx context.Context, studentID uuid.UUID) (*billing.Debtor, error) {
	lock := s.locks.get(studentID)
	lock.Lock()
	defer lock.Unlock()

	status := ledger.EntryStatusPosted
	entries, err := s.transactionRepo.ListEntries(ctx, ledger.TransactionFilter{
		StudentID: &studentID,
		Status:    &status,
	})
	if err != nil {
		return nil, err
	}

	balance := decimal.Zero
	payments := billing.MonthlyPayments{}
	for i := range entries {
		for _, line := range entries[i].Lines {
			if line.AccountCode == ledger.AccountReceivable {
				balance = balance.Add(line.Debit).Sub(line.Credit)
			}
			if entries[i].Source == ledger.SourcePayment && line.Period != "" && line.Credit.IsPositive() {
				payments[line.Period] = payments[line.Period].Add(line.Credit)
			}
		}
	}

	debtor, err := s.debtorRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if debtor == nil {
		debtor, err = billing.NewDebtor(studentID)
		if err != nil {
			return nil, err
		}
	}
	debtor.Reset(balance, payments)
	if err := s.debtorRepo.Save(ctx, debtor); err != nil {
		return nil, err
	}

	s.logger.Info("rebuilt debtor projection",
		zap.String("student_id", studentID.String()),
		zap.String("balance", balance.StringFixed(2)),
		zap.Int("entries", len(entries)))

	return debtor, nil
}
