package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate root
type AccountModel struct {
	AggregateModel
	Code         string             `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name         string             `gorm:"type:varchar(200);not null"`
	Type         ledger.AccountType `gorm:"type:varchar(20);not null;index"`
	Category     string             `gorm:"type:varchar(50);index"`
	SubledgerKey string             `gorm:"type:varchar(100);index:idx_accounts_subledger_key,where:subledger_key <> ''"`
	Active       bool               `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Type:              m.Type,
		Category:          m.Category,
		SubledgerKey:      m.SubledgerKey,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.Category = a.Category
	m.SubledgerKey = a.SubledgerKey
	m.Active = a.Active
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// TransactionModel is the persistence model for the Transaction header
type TransactionModel struct {
	AggregateModel
	Date        time.Time              `gorm:"not null;index"`
	Description string                 `gorm:"type:text"`
	Type        ledger.TransactionType `gorm:"type:varchar(30);not null;index"`
	Reference   string                 `gorm:"type:varchar(100);index"`
	ResidenceID uuid.UUID              `gorm:"type:uuid;not null;index"`
	CreatedBy   string                 `gorm:"type:varchar(100)"`
	Entry       *TransactionEntryModel `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	tx := &ledger.Transaction{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Date:              m.Date,
		Description:       m.Description,
		Type:              m.Type,
		Reference:         m.Reference,
		ResidenceID:       m.ResidenceID,
		CreatedBy:         m.CreatedBy,
	}
	if m.Entry != nil {
		tx.Entry = m.Entry.ToDomain()
	}
	return tx
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(tx *ledger.Transaction) {
	m.FromDomainAggregateRoot(tx.BaseAggregateRoot)
	m.Date = tx.Date
	m.Description = tx.Description
	m.Type = tx.Type
	m.Reference = tx.Reference
	m.ResidenceID = tx.ResidenceID
	m.CreatedBy = tx.CreatedBy
	if tx.Entry != nil {
		m.Entry = TransactionEntryModelFromDomain(tx.Entry)
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(tx *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(tx)
	return m
}

// TransactionEntryModel is the persistence model for TransactionEntry.
// The unique index on (source, source_id) is the primary duplicate
// guard: a redelivered event cannot create a second entry.
type TransactionEntryModel struct {
	AggregateModel
	TransactionID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Lines         []LineEntryModel   `gorm:"foreignKey:EntryID;references:ID"`
	TotalDebit    decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TotalCredit   decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Source        ledger.EntrySource `gorm:"type:varchar(30);not null;uniqueIndex:idx_entries_source,priority:1"`
	SourceID      string             `gorm:"type:varchar(100);not null;uniqueIndex:idx_entries_source,priority:2"`
	StudentID     *uuid.UUID         `gorm:"type:uuid;index"`
	Status        ledger.EntryStatus `gorm:"type:varchar(20);not null;default:'posted';index"`
	Metadata      ledger.Metadata    `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (TransactionEntryModel) TableName() string {
	return "transaction_entries"
}

// ToDomain converts the persistence model to a domain TransactionEntry
func (m *TransactionEntryModel) ToDomain() *ledger.TransactionEntry {
	entry := &ledger.TransactionEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TransactionID:     m.TransactionID,
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		Source:            m.Source,
		SourceID:          m.SourceID,
		StudentID:         m.StudentID,
		Status:            m.Status,
		Metadata:          m.Metadata,
		Lines:             make([]ledger.LineEntry, len(m.Lines)),
	}
	if entry.Metadata == nil {
		entry.Metadata = ledger.Metadata{}
	}
	for i, line := range m.Lines {
		entry.Lines[i] = line.ToDomain()
	}
	return entry
}

// FromDomain populates the persistence model from a domain TransactionEntry
func (m *TransactionEntryModel) FromDomain(e *ledger.TransactionEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.TransactionID = e.TransactionID
	m.TotalDebit = e.TotalDebit
	m.TotalCredit = e.TotalCredit
	m.Source = e.Source
	m.SourceID = e.SourceID
	m.StudentID = e.StudentID
	m.Status = e.Status
	m.Metadata = e.Metadata
	m.Lines = make([]LineEntryModel, len(e.Lines))
	for i, line := range e.Lines {
		m.Lines[i].FromDomain(e.ID, i, line)
	}
}

// TransactionEntryModelFromDomain creates a new persistence model from a domain TransactionEntry
func TransactionEntryModelFromDomain(e *ledger.TransactionEntry) *TransactionEntryModel {
	m := &TransactionEntryModel{}
	m.FromDomain(e)
	return m
}

// LineEntryModel is one debit or credit line, stored as a child row so
// account balances and per-period rent sums are plain SQL aggregates.
type LineEntryModel struct {
	ID          uint               `gorm:"primaryKey;autoIncrement"`
	EntryID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Position    int                `gorm:"not null"`
	AccountCode string             `gorm:"type:varchar(20);not null;index"`
	AccountType ledger.AccountType `gorm:"type:varchar(20);not null"`
	Debit       decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Credit      decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Description string             `gorm:"type:text"`
	Period      string             `gorm:"type:varchar(7);index:idx_lines_period,where:period <> ''"`
}

// TableName returns the table name for GORM
func (LineEntryModel) TableName() string {
	return "line_entries"
}

// ToDomain converts the persistence model to a domain LineEntry
func (m *LineEntryModel) ToDomain() ledger.LineEntry {
	return ledger.LineEntry{
		AccountCode: m.AccountCode,
		AccountType: m.AccountType,
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
		Period:      m.Period,
	}
}

// FromDomain populates the persistence model from a domain LineEntry
func (m *LineEntryModel) FromDomain(entryID uuid.UUID, position int, line ledger.LineEntry) {
	m.EntryID = entryID
	m.Position = position
	m.AccountCode = line.AccountCode
	m.AccountType = line.AccountType
	m.Debit = line.Debit
	m.Credit = line.Credit
	m.Description = line.Description
	m.Period = line.Period
}
