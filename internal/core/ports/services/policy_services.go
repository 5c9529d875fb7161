package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// COAPolicySvc answers whether accounts may receive postings. Checks are
// batched (one lookup for all IDs) but the semantics are per account.
type COAPolicySvc interface {
	// CheckAccounts fetches all referenced accounts and returns both the
	// account map and one issue per ineligible account. A lookup failure is
	// an error (account checks fail closed, never open).
	CheckAccounts(ctx context.Context, pctx domain.PostingContext, accountIDs []string) (map[string]domain.Account, []domain.ValidationIssue, error)
}

// SoDPolicySvc evaluates segregation-of-duties policy. The evaluator is pure
// and deterministic: the same inputs yield the same decision, both for the
// live request and during audit replay.
type SoDPolicySvc interface {
	// Evaluate maps {role, action, amount} to an SoDDecision. Unknown roles
	// are denied. A malformed policy table yields ErrPolicyConfiguration.
	Evaluate(pctx domain.PostingContext, action domain.Action, amount decimal.Decimal) (domain.SoDDecision, error)
}

// TaxCalculatorSvc computes derived tax lines for a journal.
type TaxCalculatorSvc interface {
	// ExpandJournalTaxes resolves all tax codes referenced by the lines in
	// one batched lookup and returns the derived tax lines plus warnings for
	// codes that degraded to zero tax.
	ExpandJournalTaxes(ctx context.Context, pctx domain.PostingContext, lines []domain.JournalLine) ([]domain.JournalLine, []domain.TaxWarning, error)
}

// JournalValidatorSvc runs the structural, COA, tax, balance, and currency
// checks over a proposed journal.
type JournalValidatorSvc interface {
	// Validate returns a ValidationResult carrying either computed totals or
	// the complete list of issues.
	Validate(ctx context.Context, pctx domain.PostingContext, currencyCode string, lines []domain.JournalLine) (domain.ValidationResult, error)
}

// IdempotencyGateSvc is the mutation admission check.
type IdempotencyGateSvc interface {
	// Admit classifies a (key, requestHash) pair as fresh, replay, or
	// conflict. On replay the stored record is returned.
	Admit(ctx context.Context, tenantID, key, requestHash string) (domain.AdmitOutcome, *domain.IdempotencyRecord, error)
}
