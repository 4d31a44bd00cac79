package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Lease carries the contractual terms the payment allocator needs:
// the monthly rent, the lease start date (for proration of the first
// month and for rejecting pre-lease settlements), and the fee/deposit
// amounts recognized as receivables at inception.
type Lease struct {
	shared.BaseAggregateRoot
	StudentID     uuid.UUID       `json:"student_id"`
	ResidenceID   uuid.UUID       `json:"residence_id"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	AdminFee      decimal.Decimal `json:"admin_fee"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	Active        bool            `json:"active"`
}

// NewLease creates a new lease
func NewLease(studentID, residenceID uuid.UUID, monthlyRent decimal.Decimal, startDate time.Time) (*Lease, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if residenceID == uuid.Nil {
		return nil, shared.ErrMissingResidence
	}
	if monthlyRent.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Monthly rent must be positive")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Lease start date is required")
	}
	return &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		ResidenceID:       residenceID,
		MonthlyRent:       monthlyRent,
		StartDate:         startDate,
		Active:            true,
	}, nil
}

// StartPeriod returns the lease's first billing period
func (l *Lease) StartPeriod() Period {
	return PeriodOf(l.StartDate)
}

// ExpectedRentFor returns the contracted rent for a period: the full
// monthly rent, prorated by elapsed days when the period is the lease's
// first month. This is the fallback estimate; an actual posted accrual
// for the period always wins over it.
func (l *Lease) ExpectedRentFor(p Period) decimal.Decimal {
	start := l.StartPeriod()
	if p.Before(start) {
		return decimal.Zero
	}
	if p.Equal(start) && l.StartDate.Day() > 1 {
		days := p.Days()
		remaining := days - l.StartDate.Day() + 1
		return l.MonthlyRent.
			Mul(decimal.NewFromInt(int64(remaining))).
			Div(decimal.NewFromInt(int64(days))).
			Round(2)
	}
	return l.MonthlyRent
}

// Terminate ends the lease
func (l *Lease) Terminate(endDate time.Time) error {
	if !l.Active {
		return shared.NewDomainError("INVALID_STATE", "Lease is already terminated")
	}
	l.Active = false
	l.EndDate = &endDate
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}
