package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
	"github.com/quantabooks/ledger_engine/internal/middleware"
	"github.com/quantabooks/ledger_engine/internal/utils/money"
)

// taxService computes derived tax lines from the tax master data. A missing
// or unavailable tax record degrades to zero tax with a warning instead of
// blocking the posting; this resilience is intentional and applies to tax
// lookups only, never to account lookups.
type taxService struct {
	taxCodeRepo portsrepo.TaxCodeReader
}

// NewTaxService creates a new tax calculator.
func NewTaxService(taxCodeRepo portsrepo.TaxCodeReader) portssvc.TaxCalculatorSvc {
	return &taxService{taxCodeRepo: taxCodeRepo}
}

var _ portssvc.TaxCalculatorSvc = (*taxService)(nil)

// CalculateLineTax computes the tax contribution of a single line amount
// under a tax code. The result is rounded to the currency's minor-unit scale
// here, per line; totals are sums of already-rounded amounts.
func CalculateLineTax(lineAmount decimal.Decimal, code domain.TaxCode) domain.TaxComputation {
	return domain.TaxComputation{
		TaxCode:      code.Code,
		TaxRate:      code.Rate,
		TaxAmount:    money.RoundToMinorUnit(lineAmount.Mul(code.Rate)),
		TaxAccountID: code.TaxAccountID,
	}
}

// ExpandJournalTaxes derives tax lines for every tax-tagged input line.
// Distinct codes are resolved in one batched lookup and the per-line
// computations are aggregated into a single tax line per code and side.
func (s *taxService) ExpandJournalTaxes(ctx context.Context, pctx domain.PostingContext, lines []domain.JournalLine) ([]domain.JournalLine, []domain.TaxWarning, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	codes := distinctTaxCodes(lines)
	if len(codes) == 0 {
		return nil, nil, nil
	}

	codeMap, err := s.taxCodeRepo.FindTaxCodesByCodes(ctx, pctx.CompanyID, codes)
	if err != nil {
		// Degrade to zero tax, flag every tagged line. The warning reaches
		// both the caller and the audit log; the entry itself still posts.
		logger.Warn("Tax code lookup unavailable, degrading to zero tax", slog.String("error", err.Error()), slog.String("company_id", pctx.CompanyID))
		return nil, degradeAll(lines, "tax master data unavailable, tax computed as zero"), nil
	}

	var taxLines []domain.JournalLine
	var warnings []domain.TaxWarning
	for i, line := range lines {
		if line.TaxCode == nil || *line.TaxCode == "" {
			continue
		}
		code, found := codeMap[*line.TaxCode]
		if !found || !code.IsActive {
			warnings = append(warnings, domain.TaxWarning{
				LineIndex: i,
				TaxCode:   *line.TaxCode,
				Message:   fmt.Sprintf("tax code %q unknown or inactive, tax computed as zero", *line.TaxCode),
			})
			continue
		}

		comp := CalculateLineTax(line.Amount(), code)
		if comp.TaxAmount.IsZero() {
			continue
		}

		taxLine := domain.JournalLine{
			AccountID:   comp.TaxAccountID,
			Description: fmt.Sprintf("Tax %s", code.Code),
			TaxCode:     line.TaxCode,
			IsTaxLine:   true,
		}
		// A tax line follows the side of the line it derives from: output
		// tax on a credited revenue line is itself a credit, input tax on a
		// debited expense line a debit.
		if line.IsDebit() {
			taxLine.Debit = comp.TaxAmount
		} else {
			taxLine.Credit = comp.TaxAmount
		}
		taxLines = append(taxLines, taxLine)
	}

	return GroupTaxLinesByCode(taxLines), warnings, nil
}

// GroupTaxLinesByCode merges derived tax lines sharing the same tax code,
// account, and side into one line each, so the ledger carries a single
// tax-liability posting per code. Amounts are already rounded per source
// line; grouping sums them without re-rounding.
func GroupTaxLinesByCode(taxLines []domain.JournalLine) []domain.JournalLine {
	type groupKey struct {
		code      string
		accountID string
		debitSide bool
	}

	grouped := make(map[groupKey]int)
	var result []domain.JournalLine
	for _, line := range taxLines {
		key := groupKey{code: *line.TaxCode, accountID: line.AccountID, debitSide: line.IsDebit()}
		if idx, ok := grouped[key]; ok {
			if line.IsDebit() {
				result[idx].Debit = result[idx].Debit.Add(line.Debit)
			} else {
				result[idx].Credit = result[idx].Credit.Add(line.Credit)
			}
			continue
		}
		grouped[key] = len(result)
		result = append(result, line)
	}
	return result
}

// distinctTaxCodes returns the unique tax codes referenced by the lines.
func distinctTaxCodes(lines []domain.JournalLine) []string {
	seen := make(map[string]struct{})
	var codes []string
	for _, line := range lines {
		if line.TaxCode == nil || *line.TaxCode == "" {
			continue
		}
		if _, ok := seen[*line.TaxCode]; ok {
			continue
		}
		seen[*line.TaxCode] = struct{}{}
		codes = append(codes, *line.TaxCode)
	}
	return codes
}

// degradeAll produces a warning for every tax-tagged line.
func degradeAll(lines []domain.JournalLine, msg string) []domain.TaxWarning {
	var warnings []domain.TaxWarning
	for i, line := range lines {
		if line.TaxCode == nil || *line.TaxCode == "" {
			continue
		}
		warnings = append(warnings, domain.TaxWarning{LineIndex: i, TaxCode: *line.TaxCode, Message: msg})
	}
	return warnings
}
