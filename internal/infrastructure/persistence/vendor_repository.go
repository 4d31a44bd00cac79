package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/partner"
	"github.com/resledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	var model models.VendorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SearchByName finds a vendor by fuzzy business-name match: an exact
// match on the normalized name wins, then a containment match.
func (r *GormVendorRepository) SearchByName(ctx context.Context, name string) (*partner.Vendor, error) {
	normalized := ledger.NormalizeName(name)
	if normalized == "" {
		return nil, nil
	}

	var model models.VendorModel
	err := r.db.WithContext(ctx).First(&model, "normalized_name = ?", normalized).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("normalized_name LIKE ?", "%"+normalized+"%").
		Order("normalized_name ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	model := &models.VendorModel{}
	model.FromDomain(vendor, ledger.NormalizeName(vendor.DisplayName()))
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormVendorRepository implements VendorRepository
var _ partner.VendorRepository = (*GormVendorRepository)(nil)
