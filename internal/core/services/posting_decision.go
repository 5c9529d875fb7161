package services

import (
	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// allowedTransitions is the posting decision state machine. POSTED and
// REJECTED are terminal except for a POSTED journal being marked REVERSED by
// its reversal; lines never change after posting.
var allowedTransitions = map[domain.JournalStatus][]domain.JournalStatus{
	domain.Draft:           {domain.Posted, domain.PendingApproval},
	domain.PendingApproval: {domain.Posted, domain.Rejected},
	domain.Posted:          {domain.Reversed},
}

// CanTransition reports whether the state machine permits moving a journal
// from one status to another.
func CanTransition(from, to domain.JournalStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// DecideInitialStatus assigns a validated journal its first status from the
// SoD decision. Posting immediately is the only transition with a ledger
// effect; an approval-gated journal holds with no effect until approved.
// Validation failures never reach this point: correctness is checked before
// authority.
func DecideInitialStatus(sod domain.SoDDecision) domain.JournalStatus {
	if sod.RequiresApproval {
		return domain.PendingApproval
	}
	return domain.Posted
}
