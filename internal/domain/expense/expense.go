package expense

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state of an expense
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// Expense is a pending or paid obligation derived from an accrual
// posting. It is created when a maintenance/supply request is approved
// and transitions to Paid when a payment posting settles its liability
// account.
type Expense struct {
	shared.BaseAggregateRoot
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	ResidenceID   uuid.UUID       `json:"residence_id"`
	// RequestID is the identifier of the originating business object
	// (the approved request); it doubles as the accrual's source id.
	RequestID string     `json:"request_id"`
	VendorID  *uuid.UUID `json:"vendor_id,omitempty"`
	// LiabilityAccountCode is the account the accrual credited: the
	// vendor's sub-ledger account or the general Accounts Payable.
	// Settlements must debit this exact account.
	LiabilityAccountCode string `json:"liability_account_code,omitempty"`
	// AccrualTransactionID back-references the transaction that accrued
	// this expense, when it was posted through the posting engine
	AccrualTransactionID *uuid.UUID `json:"accrual_transaction_id,omitempty"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`
}

// NewExpense creates a pending expense from an approved request
func NewExpense(description, category string, amount decimal.Decimal, residenceID uuid.UUID, requestID string) (*Expense, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if residenceID == uuid.Nil {
		return nil, shared.ErrMissingResidence
	}
	if requestID == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST", "Originating request ID is required")
	}
	return &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Description:       description,
		Category:          category,
		Amount:            amount,
		PaymentStatus:     PaymentStatusPending,
		ResidenceID:       residenceID,
		RequestID:         requestID,
	}, nil
}

// AttachAccrual links the expense to the transaction that accrued it and
// records which liability account was credited
func (e *Expense) AttachAccrual(transactionID uuid.UUID, liabilityAccountCode string) error {
	if e.AccrualTransactionID != nil {
		return shared.NewDomainError("INVALID_STATE", "Expense already has an accrual reference")
	}
	if transactionID == uuid.Nil || liabilityAccountCode == "" {
		return shared.NewDomainError("INVALID_INPUT", "Accrual transaction and liability account are required")
	}
	e.AccrualTransactionID = &transactionID
	e.LiabilityAccountCode = liabilityAccountCode
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// SetVendor records the vendor the expense is owed to
func (e *Expense) SetVendor(vendorID uuid.UUID) {
	e.VendorID = &vendorID
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// MarkPaid transitions the expense to Paid
func (e *Expense) MarkPaid(at time.Time) error {
	if e.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Expense %s is already paid", e.ID))
	}
	e.PaymentStatus = PaymentStatusPaid
	e.PaidAt = &at
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// IsAccrued returns true if the expense was posted through the posting engine
func (e *Expense) IsAccrued() bool {
	return e.AccrualTransactionID != nil
}
