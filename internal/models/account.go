package models

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// AccountKind refines the type into a chart-of-accounts sub-kind.
type AccountKind string

// BalanceSide is the normal balance side of an account.
type BalanceSide string

// Account is the database representation of a chart-of-accounts node.
type Account struct {
	AccountID     string          `json:"accountID"`
	TenantID      string          `json:"tenantID"`
	CompanyID     string          `json:"companyID"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"accountType"`
	AccountKind   AccountKind     `json:"accountKind"`
	NormalBalance BalanceSide     `json:"normalBalance"`
	CurrencyCode  string          `json:"currencyCode"`
	IsGroup       bool            `json:"isGroup"`
	IsActive      bool            `json:"isActive"`
	Balance       decimal.Decimal `json:"balance"`
	AuditFields
}
