package pettycash

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UsageStatus represents the approval state of a petty cash usage
type UsageStatus string

const (
	UsageStatusPending  UsageStatus = "PENDING"
	UsageStatusApproved UsageStatus = "APPROVED"
	UsageStatusRejected UsageStatus = "REJECTED"
)

// IsValid checks if the status is a valid UsageStatus
func (s UsageStatus) IsValid() bool {
	switch s {
	case UsageStatusPending, UsageStatusApproved, UsageStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true once the usage can no longer change state
func (s UsageStatus) IsTerminal() bool {
	return s == UsageStatusApproved || s == UsageStatusRejected
}

// Usage is a single petty cash spend against an allocation. It starts
// pending and is either approved (posting a ledger entry and drawing
// down the float) or rejected. Both outcomes are terminal.
type Usage struct {
	shared.BaseAggregateRoot
	AllocationID uuid.UUID       `json:"allocation_id"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Status       UsageStatus     `json:"status"`
	UsedAt       time.Time       `json:"used_at"`
	// RequestID links the usage to the maintenance/supply request it
	// settles, if any; used to locate a prior accrual for the same work
	RequestID  string     `json:"request_id,omitempty"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// NewUsage creates a pending usage against an allocation
func NewUsage(allocationID uuid.UUID, description, category string, amount decimal.Decimal, usedAt time.Time) (*Usage, error) {
	if allocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ALLOCATION", "Usage requires an allocation")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Usage amount must be positive")
	}
	if usedAt.IsZero() {
		usedAt = time.Now()
	}
	return &Usage{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AllocationID:      allocationID,
		Description:       description,
		Category:          category,
		Amount:            amount,
		Status:            UsageStatusPending,
		UsedAt:            usedAt,
	}, nil
}

// LinkRequest associates the usage with an originating request
func (u *Usage) LinkRequest(requestID string) {
	u.RequestID = requestID
}

// Approve marks the usage approved. The ledger posting and float
// draw-down happen in the application service around this transition.
func (u *Usage) Approve(reviewedBy string, at time.Time) error {
	if u.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Usage is already %s", u.Status))
	}
	u.Status = UsageStatusApproved
	u.ReviewedBy = reviewedBy
	u.ReviewedAt = &at
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Reject marks the usage rejected. No ledger entry is posted and the
// float is untouched.
func (u *Usage) Reject(reviewedBy string, at time.Time) error {
	if u.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Usage is already %s", u.Status))
	}
	u.Status = UsageStatusRejected
	u.ReviewedBy = reviewedBy
	u.ReviewedAt = &at
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}
