package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/shared"
	"github.com/resledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// SaveWithEntry persists the header, its entry and the entry's lines in
// one database transaction. The unique index on (source, source_id)
// rejects a second entry for the same business event; that violation is
// surfaced as shared.ErrAlreadyExists.
func (r *GormTransactionRepository) SaveWithEntry(ctx context.Context, tx *ledger.Transaction) error {
	if tx.Entry == nil {
		return shared.NewDomainError("INVALID_TRANSACTION", "Transaction has no entry to post")
	}

	model := models.TransactionModelFromDomain(tx)
	err := r.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		return dbTx.Create(model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateEntryStatus persists a status transition (posted -> reversed).
// Lines are never touched.
func (r *GormTransactionRepository) UpdateEntryStatus(ctx context.Context, entry *ledger.TransactionEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionEntryModel{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version-1).
		Updates(map[string]any{
			"status":   entry.Status,
			"metadata": entry.Metadata,
			"version":  entry.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindTransactionByID finds a transaction header with its entry and lines
func (r *GormTransactionRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	err := r.db.WithContext(ctx).
		Preload("Entry.Lines", lineOrder).
		Preload("Entry").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindEntryByID finds an entry with its lines
func (r *GormTransactionRepository) FindEntryByID(ctx context.Context, id uuid.UUID) (*ledger.TransactionEntry, error) {
	var model models.TransactionEntryModel
	err := r.db.WithContext(ctx).
		Preload("Lines", lineOrder).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindEntryBySource finds the entry posted for an originating business
// object, if any
func (r *GormTransactionRepository) FindEntryBySource(ctx context.Context, source ledger.EntrySource, sourceID string) (*ledger.TransactionEntry, error) {
	var model models.TransactionEntryModel
	err := r.db.WithContext(ctx).
		Preload("Lines", lineOrder).
		Where("source = ? AND source_id = ?", source, sourceID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecentEntries returns posted entries of a source created at or
// after the given instant
func (r *GormTransactionRepository) FindRecentEntries(ctx context.Context, source ledger.EntrySource, since time.Time) ([]ledger.TransactionEntry, error) {
	var entryModels []models.TransactionEntryModel
	err := r.db.WithContext(ctx).
		Where("source = ? AND status = ? AND created_at >= ?", source, ledger.EntryStatusPosted, since).
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}
	entries := make([]ledger.TransactionEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// ListEntries lists entries matching the filter, oldest first
func (r *GormTransactionRepository) ListEntries(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.TransactionEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TransactionEntryModel{}).
		Preload("Lines", lineOrder).
		Joins("JOIN transactions ON transactions.id = transaction_entries.transaction_id")

	if filter.From != nil {
		query = query.Where("transactions.date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transactions.date < ?", *filter.To)
	}
	if filter.ResidenceID != nil {
		query = query.Where("transactions.residence_id = ?", *filter.ResidenceID)
	}
	if filter.StudentID != nil {
		query = query.Where("transaction_entries.student_id = ?", *filter.StudentID)
	}
	if filter.Source != nil {
		query = query.Where("transaction_entries.source = ?", *filter.Source)
	}
	if filter.Status != nil {
		query = query.Where("transaction_entries.status = ?", *filter.Status)
	}

	var entryModels []models.TransactionEntryModel
	if err := query.Order("transaction_entries.created_at ASC").Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]ledger.TransactionEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// activitySums receives SQL aggregate results
type activitySums struct {
	AccountCode string
	AccountType ledger.AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// SumAccount sums posted debits and credits against one account
func (r *GormTransactionRepository) SumAccount(ctx context.Context, accountCode string) (decimal.Decimal, decimal.Decimal, error) {
	var sums activitySums
	err := r.db.WithContext(ctx).
		Table("line_entries").
		Select("COALESCE(SUM(line_entries.debit), 0) AS debit, COALESCE(SUM(line_entries.credit), 0) AS credit").
		Joins("JOIN transaction_entries ON transaction_entries.id = line_entries.entry_id").
		Where("line_entries.account_code = ? AND transaction_entries.status = ?", accountCode, ledger.EntryStatusPosted).
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return sums.Debit, sums.Credit, nil
}

// SumAccountForStudent sums posted debits and credits against one
// account restricted to entries tagged with the student
func (r *GormTransactionRepository) SumAccountForStudent(ctx context.Context, accountCode string, studentID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var sums activitySums
	err := r.db.WithContext(ctx).
		Table("line_entries").
		Select("COALESCE(SUM(line_entries.debit), 0) AS debit, COALESCE(SUM(line_entries.credit), 0) AS credit").
		Joins("JOIN transaction_entries ON transaction_entries.id = line_entries.entry_id").
		Where("line_entries.account_code = ? AND transaction_entries.status = ? AND transaction_entries.student_id = ?",
			accountCode, ledger.EntryStatusPosted, studentID).
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return sums.Debit, sums.Credit, nil
}

// SumAccruedRent sums the receivable debits accrued for a student's
// billing period by rent-accrual postings
func (r *GormTransactionRepository) SumAccruedRent(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error) {
	var sums activitySums
	err := r.db.WithContext(ctx).
		Table("line_entries").
		Select("COALESCE(SUM(line_entries.debit), 0) AS debit").
		Joins("JOIN transaction_entries ON transaction_entries.id = line_entries.entry_id").
		Where("line_entries.account_code = ? AND line_entries.period = ?", ledger.AccountReceivable, period).
		Where("transaction_entries.status = ? AND transaction_entries.student_id = ? AND transaction_entries.source = ?",
			ledger.EntryStatusPosted, studentID, ledger.SourceRentAccrual).
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sums.Debit, nil
}

// SumRentSettled sums the rent credits already recorded against a
// student's billing period by payment postings: receivable settlements
// and deferred-income allocations both count toward the period.
func (r *GormTransactionRepository) SumRentSettled(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error) {
	var sums activitySums
	err := r.db.WithContext(ctx).
		Table("line_entries").
		Select("COALESCE(SUM(line_entries.credit), 0) AS credit").
		Joins("JOIN transaction_entries ON transaction_entries.id = line_entries.entry_id").
		Where("line_entries.period = ? AND line_entries.account_code IN ?",
			period, []string{ledger.AccountReceivable, ledger.AccountDeferredIncome}).
		Where("transaction_entries.status = ? AND transaction_entries.student_id = ? AND transaction_entries.source = ?",
			ledger.EntryStatusPosted, studentID, ledger.SourcePayment).
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sums.Credit, nil
}

// SumDeferredForPeriod nets the deferred income still held for a
// student's billing period: payment allocations credit it, recognition
// at accrual time debits it back out.
func (r *GormTransactionRepository) SumDeferredForPeriod(ctx context.Context, studentID uuid.UUID, period string) (decimal.Decimal, error) {
	var sums activitySums
	err := r.db.WithContext(ctx).
		Table("line_entries").
		Select("COALESCE(SUM(line_entries.debit), 0) AS debit, COALESCE(SUM(line_entries.credit), 0) AS credit").
		Joins("JOIN transaction_entries ON transaction_entries.id = line_entries.entry_id").
		Where("line_entries.account_code = ? AND line_entries.period = ?", ledger.AccountDeferredIncome, period).
		Where("transaction_entries.status = ? AND transaction_entries.student_id = ?", ledger.EntryStatusPosted, studentID).
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sums.Credit.Sub(sums.Debit), nil
}

// AccountActivity returns summed posted activity per account
func (r *GormTransactionRepository) AccountActivity(ctx context.Context) ([]ledger.AccountActivity, error) {
	var rows []activitySums
	err := r.db.WithContext(ctx).
		Table("line_entries").
		Select("line_entries.account_code AS account_code, line_entries.account_type AS account_type, "+
			"COALESCE(SUM(line_entries.debit), 0) AS debit, COALESCE(SUM(line_entries.credit), 0) AS credit").
		Joins("JOIN transaction_entries ON transaction_entries.id = line_entries.entry_id").
		Where("transaction_entries.status = ?", ledger.EntryStatusPosted).
		Group("line_entries.account_code, line_entries.account_type").
		Order("line_entries.account_code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	activity := make([]ledger.AccountActivity, len(rows))
	for i, row := range rows {
		activity[i] = ledger.AccountActivity{
			AccountCode: row.AccountCode,
			AccountType: row.AccountType,
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}
	return activity, nil
}

// lineOrder keeps a preloaded entry's lines in posting order
func lineOrder(db *gorm.DB) *gorm.DB {
	return db.Order("line_entries.position ASC")
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
