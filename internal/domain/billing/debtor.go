package billing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MonthlyPayments tracks per-period paid rent components, keyed by the
// canonical period label ("2006-01")
type MonthlyPayments map[string]decimal.Decimal

// Value implements driver.Valuer for database storage
func (m MonthlyPayments) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *MonthlyPayments) Scan(value any) error {
	if value == nil {
		*m = MonthlyPayments{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into MonthlyPayments", value)
	}
	return json.Unmarshal(data, m)
}

// Debtor is a cached projection of one student's ledger, NOT a source of
// truth: the authoritative balance is always re-derivable from posted
// entries, and Rebuild replaces the projection wholesale from them.
// CurrentBalance is positive when the student owes the property and
// negative when the property holds a credit/advance.
type Debtor struct {
	shared.BaseAggregateRoot
	StudentID       uuid.UUID       `json:"student_id"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	MonthlyPayments MonthlyPayments `json:"monthly_payments"`
	RebuiltAt       *time.Time      `json:"rebuilt_at,omitempty"`
}

// NewDebtor creates an empty projection for a student
func NewDebtor(studentID uuid.UUID) (*Debtor, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	return &Debtor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		CurrentBalance:    decimal.Zero,
		MonthlyPayments:   MonthlyPayments{},
	}, nil
}

// RecordCharge increases the amount owed (a rent/fee accrual)
func (d *Debtor) RecordCharge(amount decimal.Decimal) {
	d.CurrentBalance = d.CurrentBalance.Add(amount)
	d.touch()
}

// RecordPayment decreases the amount owed and tracks the rent component
// paid against a period
func (d *Debtor) RecordPayment(period Period, rentPaid, totalPaid decimal.Decimal) {
	if d.MonthlyPayments == nil {
		d.MonthlyPayments = MonthlyPayments{}
	}
	if rentPaid.IsPositive() {
		key := period.String()
		d.MonthlyPayments[key] = d.MonthlyPayments[key].Add(rentPaid)
	}
	d.CurrentBalance = d.CurrentBalance.Sub(totalPaid)
	d.touch()
}

// PaidFor returns the rent recorded as paid for a period
func (d *Debtor) PaidFor(period Period) decimal.Decimal {
	if d.MonthlyPayments == nil {
		return decimal.Zero
	}
	return d.MonthlyPayments[period.String()]
}

// Reset replaces the projection state during a rebuild from posted entries
func (d *Debtor) Reset(balance decimal.Decimal, payments MonthlyPayments) {
	if payments == nil {
		payments = MonthlyPayments{}
	}
	now := time.Now()
	d.CurrentBalance = balance
	d.MonthlyPayments = payments
	d.RebuiltAt = &now
	d.touch()
}

func (d *Debtor) touch() {
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}
