package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/expense"
	"github.com/resledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRequestID finds the expense created from an approved request
func (r *GormExpenseRepository) FindByRequestID(ctx context.Context, requestID string) (*expense.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPending returns all pending expenses, oldest first
func (r *GormExpenseRepository) FindPending(ctx context.Context) ([]expense.Expense, error) {
	var expenseModels []models.ExpenseModel
	err := r.db.WithContext(ctx).
		Where("payment_status = ?", expense.PaymentStatusPending).
		Order("created_at ASC").
		Find(&expenseModels).Error
	if err != nil {
		return nil, err
	}
	expenses := make([]expense.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = *expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	model := models.ExpenseModelFromDomain(e)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ expense.ExpenseRepository = (*GormExpenseRepository)(nil)
