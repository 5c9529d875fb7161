package domain

import "github.com/shopspring/decimal"

// IssueCode identifies one kind of validation failure. Codes are stable and
// machine-readable so that callers can self-correct without support.
type IssueCode string

const (
	IssueMinLines         IssueCode = "MIN_LINES"
	IssueLineMalformed    IssueCode = "LINE_MALFORMED"
	IssueCurrencyMismatch IssueCode = "CURRENCY_MISMATCH"
	IssueUnbalanced       IssueCode = "UNBALANCED"
	IssueAccountNotFound  IssueCode = "ACCOUNT_NOT_FOUND"
	IssueAccountInactive  IssueCode = "ACCOUNT_INACTIVE"
	IssueAccountIsGroup   IssueCode = "ACCOUNT_IS_GROUP"
	IssueAccountScope     IssueCode = "ACCOUNT_WRONG_COMPANY"
)

// ValidationIssue carries one structural, COA, or balance problem with enough
// detail to fix the request: the offending line index, account id, and for
// balance issues the exact delta and which side is short.
type ValidationIssue struct {
	Code      IssueCode        `json:"code"`
	LineIndex *int             `json:"lineIndex,omitempty"`
	AccountID string           `json:"accountID,omitempty"`
	Delta     *decimal.Decimal `json:"delta,omitempty"`     // debits minus credits, for UNBALANCED
	ShortSide BalanceSide      `json:"shortSide,omitempty"` // side that needs more, for UNBALANCED
	Message   string           `json:"message"`
}

// ValidationResult is the validator's verdict. Issues is always a list, never
// a single error: all offending accounts and lines are reported together.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`  // Sum after tax expansion
	TotalCredit decimal.Decimal   `json:"totalCredit"` // Sum after tax expansion
	TaxLines    []JournalLine     `json:"taxLines,omitempty"`
	Issues      []ValidationIssue `json:"issues,omitempty"`
	Warnings    []TaxWarning      `json:"warnings,omitempty"`
	// Accounts are the resolved COA entries for the referenced account IDs,
	// handed back so the caller does not re-fetch them for balance updates.
	Accounts map[string]Account `json:"-"`
}
