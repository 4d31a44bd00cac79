package expense

import (
	"context"

	"github.com/google/uuid"
)

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	// FindByID finds an expense by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindByRequestID finds the expense created from an approved request
	FindByRequestID(ctx context.Context, requestID string) (*Expense, error)

	// FindPending returns all pending expenses
	FindPending(ctx context.Context) ([]Expense, error)

	// Save creates or updates an expense
	Save(ctx context.Context, expense *Expense) error
}
