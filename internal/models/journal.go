package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

// Journal is the database representation of a journal entry.
type Journal struct {
	JournalID          string          `json:"journalID"`
	TenantID           string          `json:"tenantID"`
	CompanyID          string          `json:"companyID"`
	JournalNumber      string          `json:"journalNumber"`
	JournalDate        time.Time       `json:"journalDate"`
	Description        string          `json:"description"`
	CurrencyCode       string          `json:"currencyCode"`
	Status             JournalStatus   `json:"status"`
	TotalDebit         decimal.Decimal `json:"totalDebit"`
	TotalCredit        decimal.Decimal `json:"totalCredit"`
	ApproverRoles      []string        `json:"approverRoles"`
	ApprovedBy         *string         `json:"approvedBy"`
	ApprovedAt         *time.Time      `json:"approvedAt"`
	OriginalJournalID  *string         `json:"originalJournalID"`
	ReversingJournalID *string         `json:"reversingJournalID"`
	AuditFields
}

// JournalLine is the database representation of a journal line.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	JournalID   string          `json:"journalID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	TaxCode     *string         `json:"taxCode"`
	CostCenter  *string         `json:"costCenter"`
	IsTaxLine   bool            `json:"isTaxLine"`
	AuditFields
}
