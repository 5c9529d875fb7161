package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AccountKind refines the type into a chart-of-accounts sub-kind.
type AccountKind string

const (
	KindReceivable AccountKind = "RECEIVABLE"
	KindPayable    AccountKind = "PAYABLE"
	KindBank       AccountKind = "BANK"
	KindCash       AccountKind = "CASH"
	KindStock      AccountKind = "STOCK"
	KindTax        AccountKind = "TAX"
	KindNone       AccountKind = "NONE" // plain account, no sub-kind
)

// BalanceSide is the normal balance side of an account.
type BalanceSide string

const (
	DebitSide  BalanceSide = "DEBIT"
	CreditSide BalanceSide = "CREDIT"
)

// NormalBalance returns the conventional balance side for an account type.
func (t AccountType) NormalBalance() BalanceSide {
	switch t {
	case Asset, Expense:
		return DebitSide
	default:
		return CreditSide
	}
}

// Account represents a chart-of-accounts node. The posting engine treats
// accounts as read-only; lifecycle management lives with the COA module.
type Account struct {
	AccountID     string          `json:"accountID"`   // Primary Key (e.g., UUID)
	TenantID      string          `json:"tenantID"`    // Owning tenant
	CompanyID     string          `json:"companyID"`   // FK -> companies.company_id (NON-NULL)
	Code          string          `json:"code"`        // User-facing account code
	Name          string          `json:"name"`        // User-defined name
	AccountType   AccountType     `json:"accountType"` // ASSET, LIABILITY, etc.
	AccountKind   AccountKind     `json:"accountKind"` // RECEIVABLE, BANK, TAX, ...
	NormalBalance BalanceSide     `json:"normalBalance"`
	CurrencyCode  string          `json:"currencyCode"`
	IsGroup       bool            `json:"isGroup"`  // Header accounts are structural, not postable
	IsActive      bool            `json:"isActive"` // Soft delete or status flag
	Balance       decimal.Decimal `json:"balance"`  // Persisted running balance
	AuditFields
}
