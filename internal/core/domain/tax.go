package domain

import "github.com/shopspring/decimal"

// TaxCode is a tax master record. Read-only to the posting engine.
type TaxCode struct {
	Code         string          `json:"code"` // Primary Key, e.g. "SST-6"
	TenantID     string          `json:"tenantID"`
	CompanyID    string          `json:"companyID"`
	Name         string          `json:"name"`
	Rate         decimal.Decimal `json:"rate"`         // Fractional, e.g. 0.06 for 6%
	TaxAccountID string          `json:"taxAccountID"` // GL liability/receivable account for this code
	IsActive     bool            `json:"isActive"`
	AuditFields
}

// TaxComputation is the derived tax for a single line.
type TaxComputation struct {
	TaxCode      string          `json:"taxCode"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	TaxAmount    decimal.Decimal `json:"taxAmount"` // Rounded per line to the currency scale
	TaxAccountID string          `json:"taxAccountID,omitempty"`
}

// TaxWarning flags a degraded tax computation (unknown code, inactive code,
// or an unavailable tax master lookup). Warnings never block a posting; they
// are surfaced to the caller and to audit.
type TaxWarning struct {
	LineIndex int    `json:"lineIndex"`
	TaxCode   string `json:"taxCode"`
	Message   string `json:"message"`
}
