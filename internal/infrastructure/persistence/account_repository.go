package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/resledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subledgerRangeWidth bounds each six-digit sub-ledger range so the
// petty cash and vendor ranges can never run into each other
const subledgerRangeWidth = 10000

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByCode finds an account by its unique code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySubledgerKey finds a lazily created sub-ledger account by its
// counterparty key
func (r *GormAccountRepository) FindBySubledgerKey(ctx context.Context, key string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "subledger_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all accounts ordered by code
func (r *GormAccountRepository) FindAll(ctx context.Context) ([]ledger.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// NextSubledgerCode allocates the next unused code in a sub-ledger
// range. Codes in a range are fixed-width digit strings, so string
// comparison orders them correctly.
func (r *GormAccountRepository) NextSubledgerCode(ctx context.Context, base int) (string, error) {
	lower := strconv.Itoa(base)
	upper := strconv.Itoa(base + subledgerRangeWidth)

	var maxCode sql.NullString
	err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Select("MAX(code)").
		Where("code > ? AND code < ?", lower, upper).
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	next := base + 1
	if maxCode.Valid && maxCode.String != "" {
		n, err := strconv.Atoi(maxCode.String)
		if err != nil {
			return "", fmt.Errorf("corrupt sub-ledger code %q: %w", maxCode.String, err)
		}
		next = n + 1
	}
	if next >= base+subledgerRangeWidth {
		return "", shared.NewDomainError("SUBLEDGER_RANGE_FULL",
			fmt.Sprintf("Sub-ledger range starting at %d is exhausted", base))
	}
	return strconv.Itoa(next), nil
}

// SeedChart inserts the given accounts, skipping codes that already exist
func (r *GormAccountRepository) SeedChart(ctx context.Context, chart []ledger.Account) error {
	for i := range chart {
		model := models.AccountModelFromDomain(&chart[i])
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).
			Create(model).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
