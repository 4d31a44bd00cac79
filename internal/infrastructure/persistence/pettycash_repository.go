package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/pettycash"
	"github.com/resledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*pettycash.Allocation, error) {
	var model models.AllocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByRole finds the role's active allocation, most recent first
func (r *GormAllocationRepository) FindActiveByRole(ctx context.Context, role string) (*pettycash.Allocation, error) {
	var model models.AllocationModel
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", role, pettycash.AllocationStatusActive).
		Order("allocated_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all allocations, newest first
func (r *GormAllocationRepository) FindAll(ctx context.Context) ([]pettycash.Allocation, error) {
	var allocationModels []models.AllocationModel
	if err := r.db.WithContext(ctx).Order("allocated_at DESC").Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]pettycash.Allocation, len(allocationModels))
	for i := range allocationModels {
		allocations[i] = *allocationModels[i].ToDomain()
	}
	return allocations, nil
}

// Save creates or updates an allocation
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *pettycash.Allocation) error {
	model := models.AllocationModelFromDomain(allocation)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ pettycash.AllocationRepository = (*GormAllocationRepository)(nil)

// GormUsageRepository implements UsageRepository using GORM
type GormUsageRepository struct {
	db *gorm.DB
}

// NewGormUsageRepository creates a new GormUsageRepository
func NewGormUsageRepository(db *gorm.DB) *GormUsageRepository {
	return &GormUsageRepository{db: db}
}

// FindByID finds a usage by ID
func (r *GormUsageRepository) FindByID(ctx context.Context, id uuid.UUID) (*pettycash.Usage, error) {
	var model models.UsageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAllocation returns all usages drawn against an allocation
func (r *GormUsageRepository) FindByAllocation(ctx context.Context, allocationID uuid.UUID) ([]pettycash.Usage, error) {
	var usageModels []models.UsageModel
	err := r.db.WithContext(ctx).
		Where("allocation_id = ?", allocationID).
		Order("used_at ASC").
		Find(&usageModels).Error
	if err != nil {
		return nil, err
	}
	usages := make([]pettycash.Usage, len(usageModels))
	for i := range usageModels {
		usages[i] = *usageModels[i].ToDomain()
	}
	return usages, nil
}

// FindPending returns all usages awaiting review, oldest first
func (r *GormUsageRepository) FindPending(ctx context.Context) ([]pettycash.Usage, error) {
	var usageModels []models.UsageModel
	err := r.db.WithContext(ctx).
		Where("status = ?", pettycash.UsageStatusPending).
		Order("created_at ASC").
		Find(&usageModels).Error
	if err != nil {
		return nil, err
	}
	usages := make([]pettycash.Usage, len(usageModels))
	for i := range usageModels {
		usages[i] = *usageModels[i].ToDomain()
	}
	return usages, nil
}

// Save creates or updates a usage
func (r *GormUsageRepository) Save(ctx context.Context, usage *pettycash.Usage) error {
	model := models.UsageModelFromDomain(usage)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormUsageRepository implements UsageRepository
var _ pettycash.UsageRepository = (*GormUsageRepository)(nil)
