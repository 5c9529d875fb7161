package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"
)

// sodPolicyService evaluates the declarative segregation-of-duties table.
// The table is injected at construction and never mutated, which keeps the
// evaluator pure: the same decision is produced for the live request and for
// audit replay.
type sodPolicyService struct {
	policy domain.SoDPolicy
}

// NewSoDPolicyService creates a new SoD evaluator over an immutable policy table.
func NewSoDPolicyService(policy domain.SoDPolicy) portssvc.SoDPolicySvc {
	return &sodPolicyService{policy: policy}
}

var _ portssvc.SoDPolicySvc = (*sodPolicyService)(nil)

// Evaluate maps {role, action, amount} to an SoDDecision. Roles absent from
// the table are denied: the evaluator fails closed, never open.
func (s *sodPolicyService) Evaluate(pctx domain.PostingContext, action domain.Action, amount decimal.Decimal) (domain.SoDDecision, error) {
	rules, ok := s.policy.Rules[pctx.UserRole]
	if !ok {
		return domain.SoDDecision{
			Allowed: false,
			Reason:  fmt.Sprintf("role %q is not in the policy table", pctx.UserRole),
		}, nil
	}

	// Rules are declared in ascending threshold order; the first rule for
	// the action whose bound covers the amount wins.
	for _, rule := range rules {
		if rule.Action != action {
			continue
		}
		if rule.MaxAmount != nil && amount.GreaterThan(*rule.MaxAmount) {
			continue
		}
		if rule.RequiresApproval && len(rule.ApproverRoles) == 0 {
			return domain.SoDDecision{}, fmt.Errorf("%w: rule for role %q action %q requires approval but names no approver roles",
				apperrors.ErrPolicyConfiguration, pctx.UserRole, action)
		}
		return domain.SoDDecision{
			Allowed:          true,
			RequiresApproval: rule.RequiresApproval,
			ApproverRoles:    rule.ApproverRoles,
		}, nil
	}

	return domain.SoDDecision{
		Allowed: false,
		Reason:  fmt.Sprintf("no policy rule permits role %q to perform %q for amount %s", pctx.UserRole, action, amount.String()),
	}, nil
}

// DefaultSoDPolicy builds the standard role matrix. The manager posting limit
// is deployment configuration (per tenant), supplied by the caller.
//
// clerk        never posts directly; approvals route to manager and above,
//              and to finance leadership for amounts over the manager limit.
// manager      posts up to the limit, needs finance-lead/admin approval above it.
// finance-lead posts and approves without bound.
// admin        bypasses approval entirely.
func DefaultSoDPolicy(managerPostLimit decimal.Decimal) domain.SoDPolicy {
	limit := managerPostLimit
	managerAndUp := []domain.Role{domain.RoleManager, domain.RoleFinanceLead, domain.RoleAdmin}
	financeAndUp := []domain.Role{domain.RoleFinanceLead, domain.RoleAdmin}

	return domain.SoDPolicy{
		Rules: map[domain.Role][]domain.SoDRule{
			domain.RoleClerk: {
				{Action: domain.ActionPostJournal, MaxAmount: &limit, RequiresApproval: true, ApproverRoles: managerAndUp},
				{Action: domain.ActionPostJournal, RequiresApproval: true, ApproverRoles: financeAndUp},
				{Action: domain.ActionReverseJournal, MaxAmount: &limit, RequiresApproval: true, ApproverRoles: managerAndUp},
				{Action: domain.ActionReverseJournal, RequiresApproval: true, ApproverRoles: financeAndUp},
			},
			domain.RoleManager: {
				{Action: domain.ActionPostJournal, MaxAmount: &limit},
				{Action: domain.ActionPostJournal, RequiresApproval: true, ApproverRoles: financeAndUp},
				{Action: domain.ActionApproveJournal, MaxAmount: &limit},
				{Action: domain.ActionReverseJournal, MaxAmount: &limit},
				{Action: domain.ActionReverseJournal, RequiresApproval: true, ApproverRoles: financeAndUp},
			},
			domain.RoleFinanceLead: {
				{Action: domain.ActionPostJournal},
				{Action: domain.ActionApproveJournal},
				{Action: domain.ActionReverseJournal},
			},
			domain.RoleAdmin: {
				{Action: domain.ActionPostJournal},
				{Action: domain.ActionApproveJournal},
				{Action: domain.ActionReverseJournal},
			},
		},
	}
}
