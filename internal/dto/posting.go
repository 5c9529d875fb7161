package dto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// JournalLineInput is one proposed line of a journal posting request.
// Exactly one of Debit/Credit must be positive; the other must be zero.
type JournalLineInput struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	TaxCode     *string         `json:"taxCode,omitempty"`
	CostCenter  *string         `json:"costCenter,omitempty"`
}

// JournalPostingInput is the full posting request built by the API layer.
type JournalPostingInput struct {
	JournalNumber  string             `json:"journalNumber" binding:"required"`
	Description    string             `json:"description" binding:"required"`
	JournalDate    time.Time          `json:"journalDate" binding:"required"`
	CurrencyCode   string             `json:"currencyCode" binding:"required,len=3"`
	IdempotencyKey string             `json:"idempotencyKey" binding:"required"`
	Lines          []JournalLineInput `json:"lines" binding:"required,min=2,dive"`
}

// RequestHash returns the SHA-256 hex digest of the canonical JSON encoding
// of the input. Two requests with the same idempotency key must carry the
// same hash to be treated as a replay; a different hash is a conflict.
func (in JournalPostingInput) RequestHash() string {
	// json.Marshal of a struct is deterministic (field order fixed), which
	// makes the digest stable across retries of the identical payload.
	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// ToDomainLines converts request lines to domain journal lines (IDs and audit
// fields are assigned by the posting service).
func (in JournalPostingInput) ToDomainLines() []domain.JournalLine {
	lines := make([]domain.JournalLine, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = domain.JournalLine{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			TaxCode:     l.TaxCode,
			CostCenter:  l.CostCenter,
		}
	}
	return lines
}

// PostJournalResponse is the engine's outcome for a posting request. For a
// replayed idempotency key this is the stored snapshot, byte for byte.
type PostJournalResponse struct {
	JournalID        string              `json:"journalID"`
	JournalNumber    string              `json:"journalNumber"`
	Status           string              `json:"status"`
	TotalDebit       decimal.Decimal     `json:"totalDebit"`
	TotalCredit      decimal.Decimal     `json:"totalCredit"`
	RequiresApproval bool                `json:"requiresApproval"`
	ApproverRoles    []string            `json:"approverRoles,omitempty"`
	Warnings         []domain.TaxWarning `json:"warnings,omitempty"`
}

// ValidationFailureResponse is returned when a posting request fails
// validation: every offending line and account, not just the first.
type ValidationFailureResponse struct {
	Error  string                   `json:"error"`
	Issues []domain.ValidationIssue `json:"issues"`
}
