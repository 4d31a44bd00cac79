package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/pettycash"
	"github.com/shopspring/decimal"
)

// AllocationModel is the persistence model for the petty cash Allocation
type AllocationModel struct {
	AggregateModel
	Role              string                     `gorm:"type:varchar(100);not null;index"`
	ResidenceID       uuid.UUID                  `gorm:"type:uuid;not null;index"`
	AllocatedAmount   decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	RemainingAmount   decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	Status            pettycash.AllocationStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	AllocatedAt       time.Time                  `gorm:"not null"`
	HolderAccountCode string                     `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "petty_cash_allocations"
}

// ToDomain converts the persistence model to a domain Allocation
func (m *AllocationModel) ToDomain() *pettycash.Allocation {
	return &pettycash.Allocation{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Role:              m.Role,
		ResidenceID:       m.ResidenceID,
		AllocatedAmount:   m.AllocatedAmount,
		RemainingAmount:   m.RemainingAmount,
		Status:            m.Status,
		AllocatedAt:       m.AllocatedAt,
		HolderAccountCode: m.HolderAccountCode,
	}
}

// FromDomain populates the persistence model from a domain Allocation
func (m *AllocationModel) FromDomain(a *pettycash.Allocation) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Role = a.Role
	m.ResidenceID = a.ResidenceID
	m.AllocatedAmount = a.AllocatedAmount
	m.RemainingAmount = a.RemainingAmount
	m.Status = a.Status
	m.AllocatedAt = a.AllocatedAt
	m.HolderAccountCode = a.HolderAccountCode
}

// AllocationModelFromDomain creates a new persistence model from a domain Allocation
func AllocationModelFromDomain(a *pettycash.Allocation) *AllocationModel {
	m := &AllocationModel{}
	m.FromDomain(a)
	return m
}

// UsageModel is the persistence model for the petty cash Usage
type UsageModel struct {
	AggregateModel
	AllocationID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Description  string                `gorm:"type:text"`
	Category     string                `gorm:"type:varchar(50)"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status       pettycash.UsageStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	UsedAt       time.Time             `gorm:"not null"`
	RequestID    string                `gorm:"type:varchar(100);index"`
	ReviewedBy   string                `gorm:"type:varchar(100)"`
	ReviewedAt   *time.Time
}

// TableName returns the table name for GORM
func (UsageModel) TableName() string {
	return "petty_cash_usages"
}

// ToDomain converts the persistence model to a domain Usage
func (m *UsageModel) ToDomain() *pettycash.Usage {
	return &pettycash.Usage{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		AllocationID:      m.AllocationID,
		Description:       m.Description,
		Category:          m.Category,
		Amount:            m.Amount,
		Status:            m.Status,
		UsedAt:            m.UsedAt,
		RequestID:         m.RequestID,
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
	}
}

// FromDomain populates the persistence model from a domain Usage
func (m *UsageModel) FromDomain(u *pettycash.Usage) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.AllocationID = u.AllocationID
	m.Description = u.Description
	m.Category = u.Category
	m.Amount = u.Amount
	m.Status = u.Status
	m.UsedAt = u.UsedAt
	m.RequestID = u.RequestID
	m.ReviewedBy = u.ReviewedBy
	m.ReviewedAt = u.ReviewedAt
}

// UsageModelFromDomain creates a new persistence model from a domain Usage
func UsageModelFromDomain(u *pettycash.Usage) *UsageModel {
	m := &UsageModel{}
	m.FromDomain(u)
	return m
}
