package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The ledger consumes business events from the rest of the system and
// turns each into exactly one balanced posting. Every event carries the
// identifier of its originating business object; that identifier becomes
// the entry's source id and drives duplicate detection.

// MaintenanceApprovalEvent is emitted when a maintenance/supply request
// is approved. It accrues the expense and the matching liability.
type MaintenanceApprovalEvent struct {
	RequestID   string          `json:"request_id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	RequestType string          `json:"request_type"`
	Amount      decimal.Decimal `json:"amount"`
	ResidenceID uuid.UUID       `json:"residence_id"`
	VendorID    *uuid.UUID      `json:"vendor_id,omitempty"`
	VendorName  string          `json:"vendor_name,omitempty"`
	ApprovedBy  string          `json:"approved_by"`
	ApprovedAt  time.Time       `json:"approved_at"`
}

// VendorPaymentEvent is emitted when an accrued expense is paid out to
// the vendor. It settles the liability the approval accrued.
type VendorPaymentEvent struct {
	RequestID   string          `json:"request_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method,omitempty"`
	Reference   string          `json:"reference"`
	PaidAt      time.Time       `json:"paid_at"`
	CreatedBy   string          `json:"created_by"`
	ResidenceID uuid.UUID       `json:"residence_id"`
}

// StudentPaymentEvent is emitted when money is received from a student.
// The declared component amounts, when present, must sum to Amount.
// PeriodLabel is the free-form billing month the payer declared
// ("2026-09", "September"); it may be empty or unparseable.
type StudentPaymentEvent struct {
	PaymentID   string          `json:"payment_id"`
	StudentID   uuid.UUID       `json:"student_id"`
	ResidenceID uuid.UUID       `json:"residence_id"`
	Amount      decimal.Decimal `json:"amount"`
	RentAmount  decimal.Decimal `json:"rent_amount"`
	AdminFee    decimal.Decimal `json:"admin_fee"`
	Deposit     decimal.Decimal `json:"deposit"`
	PeriodLabel string          `json:"period_label,omitempty"`
	Method      string          `json:"method,omitempty"`
	ReceivedAt  time.Time       `json:"received_at"`
	CreatedBy   string          `json:"created_by"`
}

// PettyCashAllocationEvent is emitted when a float is handed to a staff
// role. Cash leaves the bank and sits with the role's holder account.
type PettyCashAllocationEvent struct {
	AllocationID uuid.UUID       `json:"allocation_id"`
	Role         string          `json:"role"`
	ResidenceID  uuid.UUID       `json:"residence_id"`
	Amount       decimal.Decimal `json:"amount"`
	AllocatedAt  time.Time       `json:"allocated_at"`
	CreatedBy    string          `json:"created_by"`
}

// PettyCashUsageEvent is emitted when an approved usage is spent from a
// role's float. RequestID, when set, links the spend to a previously
// accrued request so the posting settles that liability instead of
// expensing the amount twice.
type PettyCashUsageEvent struct {
	UsageID     uuid.UUID       `json:"usage_id"`
	Role        string          `json:"role"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	RequestID   string          `json:"request_id,omitempty"`
	UsedAt      time.Time       `json:"used_at"`
	ApprovedBy  string          `json:"approved_by"`
	ResidenceID uuid.UUID       `json:"residence_id"`
}
