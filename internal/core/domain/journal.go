package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft           JournalStatus = "DRAFT"
	PendingApproval JournalStatus = "PENDING_APPROVAL"
	Posted          JournalStatus = "POSTED"
	Rejected        JournalStatus = "REJECTED"
	Reversed        JournalStatus = "REVERSED"
)

// IsTerminal reports whether a journal in this status may never change again,
// other than a POSTED journal being marked REVERSED by its reversal.
func (s JournalStatus) IsTerminal() bool {
	return s == Posted || s == Rejected || s == Reversed
}

// Journal represents a single, balanced financial event composed of debit and
// credit lines. Once POSTED its lines are immutable; correction happens via a
// reversal journal referencing the original.
type Journal struct {
	JournalID          string          `json:"journalID"`     // Primary Key (e.g., UUID)
	TenantID           string          `json:"tenantID"`      // Owning tenant
	CompanyID          string          `json:"companyID"`     // FK -> companies.company_id (Not Null)
	JournalNumber      string          `json:"journalNumber"` // Caller-unique per company
	JournalDate        time.Time       `json:"journalDate"`   // Date the event occurred
	Description        string          `json:"description"`
	CurrencyCode       string          `json:"currencyCode"` // Single posting currency (Not Null)
	Status             JournalStatus   `json:"status"`
	TotalDebit         decimal.Decimal `json:"totalDebit"`  // After tax expansion
	TotalCredit        decimal.Decimal `json:"totalCredit"` // After tax expansion
	ApproverRoles      []string        `json:"approverRoles,omitempty"`
	ApprovedBy         *string         `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time      `json:"approvedAt,omitempty"`
	OriginalJournalID  *string         `json:"originalJournalID,omitempty"`  // Set on a reversal journal
	ReversingJournalID *string         `json:"reversingJournalID,omitempty"` // Set on the reversed original
	Lines              []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single line item within a journal, affecting one account.
// Exactly one of Debit/Credit is non-zero, in the journal's posting currency.
type JournalLine struct {
	LineID      string          `json:"lineID"`    // Primary Key (e.g., UUID)
	JournalID   string          `json:"journalID"` // FK -> Journal.journalID (Not Null)
	AccountID   string          `json:"accountID"` // FK -> Account.accountID (Not Null)
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	TaxCode     *string         `json:"taxCode,omitempty"`    // Optional tax code tag
	CostCenter  *string         `json:"costCenter,omitempty"` // Optional project/cost-center tag
	IsTaxLine   bool            `json:"isTaxLine"`            // True for engine-derived tax lines
	AuditFields
}

// IsDebit reports whether the line's non-zero side is the debit side.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the line's non-zero side amount.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}
