package pettycash

import (
	"context"

	"github.com/google/uuid"
)

// AllocationRepository defines the interface for allocation persistence
type AllocationRepository interface {
	// FindByID finds an allocation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)

	// FindActiveByRole finds the role's active allocation
	FindActiveByRole(ctx context.Context, role string) (*Allocation, error)

	// FindAll returns all allocations
	FindAll(ctx context.Context) ([]Allocation, error)

	// Save creates or updates an allocation
	Save(ctx context.Context, allocation *Allocation) error
}

// UsageRepository defines the interface for usage persistence
type UsageRepository interface {
	// FindByID finds a usage by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Usage, error)

	// FindByAllocation returns all usages drawn against an allocation
	FindByAllocation(ctx context.Context, allocationID uuid.UUID) ([]Usage, error)

	// FindPending returns all usages awaiting review
	FindPending(ctx context.Context) ([]Usage, error)

	// Save creates or updates a usage
	Save(ctx context.Context, usage *Usage) error
}
