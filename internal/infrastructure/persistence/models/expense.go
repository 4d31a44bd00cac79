package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/expense"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for the Expense aggregate root
type ExpenseModel struct {
	AggregateModel
	Description          string                `gorm:"type:text"`
	Category             string                `gorm:"type:varchar(50);index"`
	Amount               decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentStatus        expense.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ResidenceID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	RequestID            string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	VendorID             *uuid.UUID            `gorm:"type:uuid;index"`
	LiabilityAccountCode string                `gorm:"type:varchar(20)"`
	AccrualTransactionID *uuid.UUID            `gorm:"type:uuid"`
	PaidAt               *time.Time
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *expense.Expense {
	return &expense.Expense{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		Description:          m.Description,
		Category:             m.Category,
		Amount:               m.Amount,
		PaymentStatus:        m.PaymentStatus,
		ResidenceID:          m.ResidenceID,
		RequestID:            m.RequestID,
		VendorID:             m.VendorID,
		LiabilityAccountCode: m.LiabilityAccountCode,
		AccrualTransactionID: m.AccrualTransactionID,
		PaidAt:               m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *expense.Expense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Description = e.Description
	m.Category = e.Category
	m.Amount = e.Amount
	m.PaymentStatus = e.PaymentStatus
	m.ResidenceID = e.ResidenceID
	m.RequestID = e.RequestID
	m.VendorID = e.VendorID
	m.LiabilityAccountCode = e.LiabilityAccountCode
	m.AccrualTransactionID = e.AccrualTransactionID
	m.PaidAt = e.PaidAt
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *expense.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
