package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/partner"
	"github.com/resledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AccountResolver maps business events to chart accounts and lazily
// creates counterparty sub-ledger accounts on first use. Sub-ledger
// codes come from six-digit ranges disjoint from the chart so they can
// never collide with the seeded accounts.
type AccountResolver struct {
	accountRepo ledger.AccountRepository
	vendorRepo  partner.VendorRepository
	logger      *zap.Logger
}

// NewAccountResolver creates a new AccountResolver
func NewAccountResolver(accountRepo ledger.AccountRepository, vendorRepo partner.VendorRepository, logger *zap.Logger) *AccountResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountResolver{
		accountRepo: accountRepo,
		vendorRepo:  vendorRepo,
		logger:      logger,
	}
}

// EnsureChart seeds the default chart of accounts, skipping codes that
// already exist. Safe to call on every startup.
func (r *AccountResolver) EnsureChart(ctx context.Context) error {
	return r.accountRepo.SeedChart(ctx, ledger.DefaultChart())
}

// Resolve finds a chart account by code. Missing chart accounts are a
// deployment error, not a business condition.
func (r *AccountResolver) Resolve(ctx context.Context, code string) (*ledger.Account, error) {
	account, err := r.accountRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Account %s not found; chart not seeded?", code))
	}
	return account, nil
}

// ExpenseAccount resolves the expense account for a business event using
// the category/keyword rule table
func (r *AccountResolver) ExpenseAccount(ctx context.Context, in ledger.ResolutionInput) (*ledger.Account, error) {
	return r.Resolve(ctx, ledger.ResolveExpenseCode(in))
}

// VendorPayableAccount returns the vendor's dedicated payable account,
// allocating it on first use and recording the code on the vendor.
func (r *AccountResolver) VendorPayableAccount(ctx context.Context, vendor *partner.Vendor) (*ledger.Account, error) {
	if vendor.PayableAccountCode != "" {
		return r.Resolve(ctx, vendor.PayableAccountCode)
	}

	key := "vendor:" + vendor.ID.String()
	if account, err := r.accountRepo.FindBySubledgerKey(ctx, key); err != nil {
		return nil, err
	} else if account != nil {
		if assignErr := vendor.AssignPayableAccount(account.Code); assignErr == nil {
			if err := r.vendorRepo.Save(ctx, vendor); err != nil {
				return nil, err
			}
		}
		return account, nil
	}

	code, err := r.accountRepo.NextSubledgerCode(ctx, ledger.VendorPayableCodeBase)
	if err != nil {
		return nil, err
	}
	account, err := ledger.NewSubledgerAccount(code, "Payable - "+vendor.DisplayName(), ledger.AccountTypeLiability, "payable", key)
	if err != nil {
		return nil, err
	}
	if err := r.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	if err := vendor.AssignPayableAccount(code); err != nil {
		return nil, err
	}
	if err := r.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}

	r.logger.Info("allocated vendor payable account",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("account_code", code))

	return account, nil
}

// RoleCashAccount returns the petty cash holder account for a staff
// role, allocating it on first use.
func (r *AccountResolver) RoleCashAccount(ctx context.Context, role string) (*ledger.Account, error) {
	key := "role:" + ledger.NormalizeName(role)
	if account, err := r.accountRepo.FindBySubledgerKey(ctx, key); err != nil {
		return nil, err
	} else if account != nil {
		return account, nil
	}

	code, err := r.accountRepo.NextSubledgerCode(ctx, ledger.PettyCashCodeBase)
	if err != nil {
		return nil, err
	}
	account, err := ledger.NewSubledgerAccount(code, "Petty Cash - "+role, ledger.AccountTypeAsset, "petty_cash", key)
	if err != nil {
		return nil, err
	}
	if err := r.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	r.logger.Info("allocated petty cash account",
		zap.String("role", role),
		zap.String("account_code", code))

	return account, nil
}

// ResolveVendor finds a vendor by id or fuzzy business-name match,
// creating one when the name is new. Either id or name must be given.
func (r *AccountResolver) ResolveVendor(ctx context.Context, vendorID *uuid.UUID, name string) (*partner.Vendor, error) {
	if vendorID != nil && *vendorID != uuid.Nil {
		vendor, err := r.vendorRepo.FindByID(ctx, *vendorID)
		if err != nil {
			return nil, err
		}
		if vendor == nil {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Vendor %s not found", vendorID))
		}
		return vendor, nil
	}

	if name == "" {
		return nil, nil
	}

	vendor, err := r.vendorRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if vendor != nil {
		return vendor, nil
	}

	vendor, err = partner.NewVendor(name, name)
	if err != nil {
		return nil, err
	}
	if err := r.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	r.logger.Info("registered vendor from payment event", zap.String("name", name), zap.String("vendor_id", vendor.ID.String()))
	return vendor, nil
}
