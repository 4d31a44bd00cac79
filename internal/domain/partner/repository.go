package partner

import (
	"context"

	"github.com/google/uuid"
)

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds a vendor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// SearchByName finds a vendor by fuzzy business-name match
	// (case- and whitespace-folded containment)
	SearchByName(ctx context.Context, name string) (*Vendor, error)

	// Save creates or updates a vendor
	Save(ctx context.Context, vendor *Vendor) error
}
