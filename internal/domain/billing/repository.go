package billing

import (
	"context"

	"github.com/google/uuid"
)

// LeaseRepository defines the interface for lease persistence
type LeaseRepository interface {
	// FindByID finds a lease by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)

	// FindActiveByStudent finds the student's active lease
	FindActiveByStudent(ctx context.Context, studentID uuid.UUID) (*Lease, error)

	// Save creates or updates a lease
	Save(ctx context.Context, lease *Lease) error
}

// DebtorRepository defines the interface for the debtor projection
type DebtorRepository interface {
	// FindByStudent finds the projection for a student
	FindByStudent(ctx context.Context, studentID uuid.UUID) (*Debtor, error)

	// Save creates or updates the projection
	Save(ctx context.Context, debtor *Debtor) error
}
