package pettycash

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AllocationStatus represents the lifecycle state of a float allocation
type AllocationStatus string

const (
	AllocationStatusActive   AllocationStatus = "ACTIVE"
	AllocationStatusInactive AllocationStatus = "INACTIVE"
	AllocationStatusClosed   AllocationStatus = "CLOSED"
)

// IsValid checks if the status is a valid AllocationStatus
func (s AllocationStatus) IsValid() bool {
	switch s {
	case AllocationStatusActive, AllocationStatusInactive, AllocationStatusClosed:
		return true
	}
	return false
}

// Allocation is a petty cash float handed to a staff role. Approved
// usages draw it down; spending past the remaining amount is rejected.
type Allocation struct {
	shared.BaseAggregateRoot
	Role            string           `json:"role"`
	ResidenceID     uuid.UUID        `json:"residence_id"`
	AllocatedAmount decimal.Decimal  `json:"allocated_amount"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	Status          AllocationStatus `json:"status"`
	AllocatedAt     time.Time        `json:"allocated_at"`
	// HolderAccountCode is the role's petty cash sub-ledger account
	HolderAccountCode string `json:"holder_account_code,omitempty"`
}

// NewAllocation creates an active float for a role
func NewAllocation(role string, residenceID uuid.UUID, amount decimal.Decimal, at time.Time) (*Allocation, error) {
	if role == "" {
		return nil, shared.NewDomainError("INVALID_ROLE", "Allocation requires a holder role")
	}
	if residenceID == uuid.Nil {
		return nil, shared.ErrMissingResidence
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if at.IsZero() {
		at = time.Now()
	}
	return &Allocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Role:              role,
		ResidenceID:       residenceID,
		AllocatedAmount:   amount,
		RemainingAmount:   amount,
		Status:            AllocationStatusActive,
		AllocatedAt:       at,
	}, nil
}

// SetHolderAccount records the role's petty cash sub-ledger account
func (a *Allocation) SetHolderAccount(code string) {
	a.HolderAccountCode = code
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// RecordUsage draws an approved usage down from the remaining float
func (a *Allocation) RecordUsage(amount decimal.Decimal) error {
	if a.Status != AllocationStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Allocation is %s, not active", a.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Usage amount must be positive")
	}
	if amount.GreaterThan(a.RemainingAmount) {
		return shared.ErrInsufficientFunds
	}
	a.RemainingAmount = a.RemainingAmount.Sub(amount)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// TopUp adds to an active float
func (a *Allocation) TopUp(amount decimal.Decimal) error {
	if a.Status != AllocationStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Allocation is %s, not active", a.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Top-up amount must be positive")
	}
	a.AllocatedAmount = a.AllocatedAmount.Add(amount)
	a.RemainingAmount = a.RemainingAmount.Add(amount)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Deactivate suspends the float; pending usages against it can no longer
// be approved until it is reactivated
func (a *Allocation) Deactivate() error {
	if a.Status != AllocationStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot deactivate allocation in %s status", a.Status))
	}
	a.Status = AllocationStatusInactive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Reactivate resumes a suspended float
func (a *Allocation) Reactivate() error {
	if a.Status != AllocationStatusInactive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reactivate allocation in %s status", a.Status))
	}
	a.Status = AllocationStatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Close permanently ends the float. Closed allocations never reopen.
func (a *Allocation) Close() error {
	if a.Status == AllocationStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Allocation is already closed")
	}
	a.Status = AllocationStatusClosed
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// SpentAmount returns how much of the float has been used
func (a *Allocation) SpentAmount() decimal.Decimal {
	return a.AllocatedAmount.Sub(a.RemainingAmount)
}
