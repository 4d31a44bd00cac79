package ledger

import (
	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryPostedEvent is raised when a balanced entry is posted
type EntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID       uuid.UUID       `json:"entry_id"`
	TransactionID uuid.UUID       `json:"tx_id"`
	Source        EntrySource     `json:"source"`
	SourceID      string          `json:"source_id"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
}

// EventType returns the event type name
func (e *EntryPostedEvent) EventType() string {
	return "TransactionEntryPosted"
}

// NewEntryPostedEvent creates a new EntryPostedEvent
func NewEntryPostedEvent(entry *TransactionEntry) *EntryPostedEvent {
	return &EntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransactionEntryPosted", "TransactionEntry", entry.ID),
		EntryID:         entry.ID,
		TransactionID:   entry.TransactionID,
		Source:          entry.Source,
		SourceID:        entry.SourceID,
		TotalDebit:      entry.TotalDebit,
		TotalCredit:     entry.TotalCredit,
	}
}

// EntryReversedEvent is raised when an offsetting entry supersedes a posted one
type EntryReversedEvent struct {
	shared.BaseDomainEvent
	EntryID       uuid.UUID `json:"entry_id"`
	OffsetEntryID uuid.UUID `json:"offset_entry_id"`
}

// EventType returns the event type name
func (e *EntryReversedEvent) EventType() string {
	return "TransactionEntryReversed"
}

// NewEntryReversedEvent creates a new EntryReversedEvent
func NewEntryReversedEvent(entry *TransactionEntry, offsetEntryID uuid.UUID) *EntryReversedEvent {
	return &EntryReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransactionEntryReversed", "TransactionEntry", entry.ID),
		EntryID:         entry.ID,
		OffsetEntryID:   offsetEntryID,
	}
}
