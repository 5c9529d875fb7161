package services

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	"github.com/quantabooks/ledger_engine/internal/middleware"
)

// coaPolicyService decides whether accounts may receive postings. It performs
// no writes; the chart of accounts is read-only collaborator state.
type coaPolicyService struct {
	accountRepo portsrepo.AccountReader
}

// NewCOAPolicyService creates a new chart-of-accounts policy service.
func NewCOAPolicyService(accountRepo portsrepo.AccountReader) portssvc.COAPolicySvc {
	return &coaPolicyService{accountRepo: accountRepo}
}

var _ portssvc.COAPolicySvc = (*coaPolicyService)(nil)

// CheckAccounts fetches every referenced account in one round trip and
// returns an issue for each account that cannot receive postings. All
// offending accounts are reported, not just the first. A failed lookup is an
// error: when account data is unavailable the check fails closed.
func (s *coaPolicyService) CheckAccounts(ctx context.Context, pctx domain.PostingContext, accountIDs []string) (map[string]domain.Account, []domain.ValidationIssue, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Account lookup failed during COA check", slog.String("error", err.Error()), slog.String("company_id", pctx.CompanyID))
		return nil, nil, fmt.Errorf("%w: account lookup failed: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	var issues []domain.ValidationIssue
	for _, id := range accountIDs {
		acc, found := accounts[id]
		if !found {
			issues = append(issues, domain.ValidationIssue{
				Code:      domain.IssueAccountNotFound,
				AccountID: id,
				Message:   fmt.Sprintf("account %s not found", id),
			})
			continue
		}
		if issue := checkPostable(acc, pctx.CompanyID); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return accounts, issues, nil
}

// checkPostable evaluates one account against COA policy. Group/header
// accounts are structural and never postable, regardless of amount or
// balance.
func checkPostable(acc domain.Account, companyID string) *domain.ValidationIssue {
	switch {
	case acc.CompanyID != companyID:
		// Obscure existence of accounts outside the caller's company scope.
		return &domain.ValidationIssue{
			Code:      domain.IssueAccountScope,
			AccountID: acc.AccountID,
			Message:   fmt.Sprintf("account %s not found", acc.AccountID),
		}
	case !acc.IsActive:
		return &domain.ValidationIssue{
			Code:      domain.IssueAccountInactive,
			AccountID: acc.AccountID,
			Message:   fmt.Sprintf("account %s is inactive", acc.AccountID),
		}
	case acc.IsGroup:
		return &domain.ValidationIssue{
			Code:      domain.IssueAccountIsGroup,
			AccountID: acc.AccountID,
			Message:   fmt.Sprintf("account %s is a group header and cannot receive postings", acc.AccountID),
		}
	}
	return nil
}
