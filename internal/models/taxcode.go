package models

import (
	"github.com/shopspring/decimal"
)

// TaxCode is the database representation of a tax master record.
type TaxCode struct {
	Code         string          `json:"code"`
	TenantID     string          `json:"tenantID"`
	CompanyID    string          `json:"companyID"`
	Name         string          `json:"name"`
	Rate         decimal.Decimal `json:"rate"`
	TaxAccountID string          `json:"taxAccountID"`
	IsActive     bool            `json:"isActive"`
	AuditFields
}
