package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/billing"
	"github.com/resledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLeaseRepository implements LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// FindByID finds a lease by ID
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Lease, error) {
	var model models.LeaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByStudent finds the student's active lease. With more than
// one active lease the most recently started wins.
func (r *GormLeaseRepository) FindActiveByStudent(ctx context.Context, studentID uuid.UUID) (*billing.Lease, error) {
	var model models.LeaseModel
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND active = ?", studentID, true).
		Order("start_date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a lease
func (r *GormLeaseRepository) Save(ctx context.Context, lease *billing.Lease) error {
	model := models.LeaseModelFromDomain(lease)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormLeaseRepository implements LeaseRepository
var _ billing.LeaseRepository = (*GormLeaseRepository)(nil)

// GormDebtorRepository implements DebtorRepository using GORM
type GormDebtorRepository struct {
	db *gorm.DB
}

// NewGormDebtorRepository creates a new GormDebtorRepository
func NewGormDebtorRepository(db *gorm.DB) *GormDebtorRepository {
	return &GormDebtorRepository{db: db}
}

// FindByStudent finds the projection for a student
func (r *GormDebtorRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) (*billing.Debtor, error) {
	var model models.DebtorModel
	if err := r.db.WithContext(ctx).First(&model, "student_id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates the projection
func (r *GormDebtorRepository) Save(ctx context.Context, debtor *billing.Debtor) error {
	model := models.DebtorModelFromDomain(debtor)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormDebtorRepository implements DebtorRepository
var _ billing.DebtorRepository = (*GormDebtorRepository)(nil)
