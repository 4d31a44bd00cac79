package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// LeaseModel is the persistence model for the Lease aggregate root
type LeaseModel struct {
	AggregateModel
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ResidenceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MonthlyRent   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AdminFee      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DepositAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       *time.Time
	Active        bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (LeaseModel) TableName() string {
	return "leases"
}

// ToDomain converts the persistence model to a domain Lease
func (m *LeaseModel) ToDomain() *billing.Lease {
	return &billing.Lease{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		ResidenceID:       m.ResidenceID,
		MonthlyRent:       m.MonthlyRent,
		AdminFee:          m.AdminFee,
		DepositAmount:     m.DepositAmount,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Lease
func (m *LeaseModel) FromDomain(l *billing.Lease) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.StudentID = l.StudentID
	m.ResidenceID = l.ResidenceID
	m.MonthlyRent = l.MonthlyRent
	m.AdminFee = l.AdminFee
	m.DepositAmount = l.DepositAmount
	m.StartDate = l.StartDate
	m.EndDate = l.EndDate
	m.Active = l.Active
}

// LeaseModelFromDomain creates a new persistence model from a domain Lease
func LeaseModelFromDomain(l *billing.Lease) *LeaseModel {
	m := &LeaseModel{}
	m.FromDomain(l)
	return m
}

// DebtorModel is the persistence model for the Debtor projection
type DebtorModel struct {
	AggregateModel
	StudentID       uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex"`
	CurrentBalance  decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	MonthlyPayments billing.MonthlyPayments `gorm:"type:jsonb;default:'{}'"`
	RebuiltAt       *time.Time
}

// TableName returns the table name for GORM
func (DebtorModel) TableName() string {
	return "debtors"
}

// ToDomain converts the persistence model to a domain Debtor
func (m *DebtorModel) ToDomain() *billing.Debtor {
	d := &billing.Debtor{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		CurrentBalance:    m.CurrentBalance,
		MonthlyPayments:   m.MonthlyPayments,
		RebuiltAt:         m.RebuiltAt,
	}
	if d.MonthlyPayments == nil {
		d.MonthlyPayments = billing.MonthlyPayments{}
	}
	return d
}

// FromDomain populates the persistence model from a domain Debtor
func (m *DebtorModel) FromDomain(d *billing.Debtor) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.StudentID = d.StudentID
	m.CurrentBalance = d.CurrentBalance
	m.MonthlyPayments = d.MonthlyPayments
	m.RebuiltAt = d.RebuiltAt
}

// DebtorModelFromDomain creates a new persistence model from a domain Debtor
func DebtorModelFromDomain(d *billing.Debtor) *DebtorModel {
	m := &DebtorModel{}
	m.FromDomain(d)
	return m
}
