package partner

import (
	"time"

	"github.com/resledger/backend/internal/domain/shared"
)

// Vendor is a supplier the property owes money to. Each vendor gets its
// own payable sub-ledger account on first use so its outstanding balance
// can be queried independently of the general Accounts Payable total.
type Vendor struct {
	shared.BaseAggregateRoot
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	ContactEmail string `json:"contact_email,omitempty"`
	// PayableAccountCode is the vendor's dedicated Liability account,
	// empty until the resolver lazily allocates it
	PayableAccountCode string `json:"payable_account_code,omitempty"`
	Active             bool   `json:"active"`
}

// NewVendor creates a new vendor
func NewVendor(name, businessName string) (*Vendor, error) {
	if name == "" && businessName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor requires a name or business name")
	}
	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		BusinessName:      businessName,
		Active:            true,
	}, nil
}

// AssignPayableAccount records the lazily created sub-ledger account.
// The code never changes once assigned.
func (v *Vendor) AssignPayableAccount(code string) error {
	if v.PayableAccountCode != "" {
		return shared.NewDomainError("INVALID_STATE", "Vendor already has a payable account")
	}
	if code == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	v.PayableAccountCode = code
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// DisplayName prefers the registered business name
func (v *Vendor) DisplayName() string {
	if v.BusinessName != "" {
		return v.BusinessName
	}
	return v.Name
}
