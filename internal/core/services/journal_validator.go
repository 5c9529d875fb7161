package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
	"github.com/quantabooks/ledger_engine/internal/utils/money"
)

// journalValidator runs the full validation pipeline over a proposed journal:
// structural checks, per-account COA policy, tax expansion, balance within
// tolerance, and currency consistency. Issues are collected, not
// short-circuited, so the caller sees every offending line and account.
type journalValidator struct {
	coaSvc portssvc.COAPolicySvc
	taxSvc portssvc.TaxCalculatorSvc
}

// NewJournalValidator creates a new journal validator.
func NewJournalValidator(coaSvc portssvc.COAPolicySvc, taxSvc portssvc.TaxCalculatorSvc) portssvc.JournalValidatorSvc {
	return &journalValidator{coaSvc: coaSvc, taxSvc: taxSvc}
}

var _ portssvc.JournalValidatorSvc = (*journalValidator)(nil)

// Validate checks a proposed set of lines and returns either computed totals
// or the complete issue list. The returned error is reserved for collaborator
// failures (account lookup unavailable); validation failures are carried in
// the result.
func (v *journalValidator) Validate(ctx context.Context, pctx domain.PostingContext, currencyCode string, lines []domain.JournalLine) (domain.ValidationResult, error) {
	var issues []domain.ValidationIssue

	// Structural checks. A single-line "journal" is never valid double entry.
	if len(lines) < 2 {
		issues = append(issues, domain.ValidationIssue{
			Code:    domain.IssueMinLines,
			Message: "journal must have at least two lines",
		})
	}
	for i := range lines {
		if issue := checkLine(i, lines[i]); issue != nil {
			issues = append(issues, *issue)
		}
	}

	// COA policy, batched over distinct accounts, all failures collected.
	// Account lookup errors fail the validation closed.
	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accounts, coaIssues, err := v.coaSvc.CheckAccounts(ctx, pctx, uniqueStrings(accountIDs))
	if err != nil {
		return domain.ValidationResult{}, err
	}
	issues = append(issues, coaIssues...)

	// Accounts must carry the journal's posting currency; cross-currency
	// entries belong to the FX translation subsystem, not this engine.
	for _, id := range uniqueStrings(accountIDs) {
		acc, found := accounts[id]
		if !found || acc.CompanyID != pctx.CompanyID {
			continue // already reported by the COA check
		}
		if acc.CurrencyCode != currencyCode {
			issues = append(issues, domain.ValidationIssue{
				Code:      domain.IssueCurrencyMismatch,
				AccountID: id,
				Message:   fmt.Sprintf("account %s currency %s does not match journal currency %s", id, acc.CurrencyCode, currencyCode),
			})
		}
	}

	// Tax expansion. Derived tax lines participate in the balance check, and
	// their accounts pass the same COA policy as caller lines: a tax account
	// that is inactive, a group header, or outside the company may not
	// silently receive postings.
	taxLines, warnings, err := v.taxSvc.ExpandJournalTaxes(ctx, pctx, lines)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	taxAccountIDs := make([]string, 0, len(taxLines))
	for _, taxLine := range taxLines {
		if _, known := accounts[taxLine.AccountID]; !known {
			taxAccountIDs = append(taxAccountIDs, taxLine.AccountID)
		}
	}
	if len(taxAccountIDs) > 0 {
		taxAccounts, taxIssues, err := v.coaSvc.CheckAccounts(ctx, pctx, uniqueStrings(taxAccountIDs))
		if err != nil {
			return domain.ValidationResult{}, err
		}
		issues = append(issues, taxIssues...)
		for id, acc := range taxAccounts {
			// Merged in so balance changes cover derived lines too.
			accounts[id] = acc
			if acc.CompanyID == pctx.CompanyID && acc.CurrencyCode != currencyCode {
				issues = append(issues, domain.ValidationIssue{
					Code:      domain.IssueCurrencyMismatch,
					AccountID: id,
					Message:   fmt.Sprintf("account %s currency %s does not match journal currency %s", id, acc.CurrencyCode, currencyCode),
				})
			}
		}
	}

	totalDebit, totalCredit := sumLines(lines)
	taxDebit, taxCredit := sumLines(taxLines)
	totalDebit = totalDebit.Add(taxDebit)
	totalCredit = totalCredit.Add(taxCredit)

	if !money.WithinTolerance(totalDebit, totalCredit) {
		delta := money.Delta(totalDebit, totalCredit)
		shortSide := domain.DebitSide
		if delta.IsPositive() {
			shortSide = domain.CreditSide
		}
		issues = append(issues, domain.ValidationIssue{
			Code:      domain.IssueUnbalanced,
			Delta:     &delta,
			ShortSide: shortSide,
			Message:   fmt.Sprintf("journal is unbalanced by %s, %s side is short", delta.Abs().String(), shortSide),
		})
	}

	return domain.ValidationResult{
		Valid:       len(issues) == 0,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		TaxLines:    taxLines,
		Issues:      issues,
		Warnings:    warnings,
		Accounts:    accounts,
	}, nil
}

// checkLine enforces the line invariant: debit >= 0, credit >= 0, exactly one
// side positive.
func checkLine(index int, line domain.JournalLine) *domain.ValidationIssue {
	i := index
	switch {
	case line.Debit.IsNegative() || line.Credit.IsNegative():
		return &domain.ValidationIssue{
			Code:      domain.IssueLineMalformed,
			LineIndex: &i,
			AccountID: line.AccountID,
			Message:   fmt.Sprintf("line %d: amounts must not be negative", i),
		}
	case line.Debit.IsPositive() && line.Credit.IsPositive():
		return &domain.ValidationIssue{
			Code:      domain.IssueLineMalformed,
			LineIndex: &i,
			AccountID: line.AccountID,
			Message:   fmt.Sprintf("line %d: exactly one of debit or credit may be set", i),
		}
	case line.Debit.IsZero() && line.Credit.IsZero():
		return &domain.ValidationIssue{
			Code:      domain.IssueLineMalformed,
			LineIndex: &i,
			AccountID: line.AccountID,
			Message:   fmt.Sprintf("line %d: one of debit or credit must be positive", i),
		}
	}
	return nil
}

// sumLines totals the debit and credit sides of a line set.
func sumLines(lines []domain.JournalLine) (decimal.Decimal, decimal.Decimal) {
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	return totalDebit, totalCredit
}

// uniqueStrings returns a slice containing only the unique strings from the
// input, preserving order.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
