package models

import (
	"github.com/resledger/backend/internal/domain/partner"
)

// VendorModel is the persistence model for the Vendor aggregate root.
// NormalizedName supports fuzzy lookups without case/whitespace games
// in every query.
type VendorModel struct {
	AggregateModel
	Name               string `gorm:"type:varchar(200);not null"`
	BusinessName       string `gorm:"type:varchar(200)"`
	NormalizedName     string `gorm:"type:varchar(200);index"`
	ContactEmail       string `gorm:"type:varchar(200)"`
	PayableAccountCode string `gorm:"type:varchar(20);index"`
	Active             bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor
func (m *VendorModel) ToDomain() *partner.Vendor {
	return &partner.Vendor{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		Name:               m.Name,
		BusinessName:       m.BusinessName,
		ContactEmail:       m.ContactEmail,
		PayableAccountCode: m.PayableAccountCode,
		Active:             m.Active,
	}
}

// FromDomain populates the persistence model from a domain Vendor
func (m *VendorModel) FromDomain(v *partner.Vendor, normalizedName string) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Name = v.Name
	m.BusinessName = v.BusinessName
	m.NormalizedName = normalizedName
	m.ContactEmail = v.ContactEmail
	m.PayableAccountCode = v.PayableAccountCode
	m.Active = v.Active
}
