package ledger

import (
	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/shared"
)

// AccountCreatedEvent is raised when a new account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID    uuid.UUID   `json:"account_id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	AccountType  AccountType `json:"account_type"`
	SubledgerKey string      `json:"subledger_key,omitempty"`
}

// EventType returns the event type name
func (e *AccountCreatedEvent) EventType() string {
	return "AccountCreated"
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountCreated", "Account", a.ID),
		AccountID:       a.ID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     a.Type,
		SubledgerKey:    a.SubledgerKey,
	}
}

// AccountDeactivatedEvent is raised when an account is deactivated
type AccountDeactivatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Code      string    `json:"code"`
}

// EventType returns the event type name
func (e *AccountDeactivatedEvent) EventType() string {
	return "AccountDeactivated"
}

// NewAccountDeactivatedEvent creates a new AccountDeactivatedEvent
func NewAccountDeactivatedEvent(a *Account) *AccountDeactivatedEvent {
	return &AccountDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountDeactivated", "Account", a.ID),
		AccountID:       a.ID,
		Code:            a.Code,
	}
}
