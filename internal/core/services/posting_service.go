package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	"github.com/quantabooks/ledger_engine/internal/dto"
	"github.com/quantabooks/ledger_engine/internal/middleware"
)

var (
	ErrJournalNotPending  = errors.New("journal is not pending approval")
	ErrSelfApproval       = errors.New("creator cannot approve their own journal")
	ErrNotApproverRole    = errors.New("role is not among the journal's approver roles")
	ErrNotPosted          = errors.New("journal must be posted to be reversed")
	ErrReversalOfReversal = errors.New("cannot reverse a journal that is already a reversal")
)

// ValidationFailedError carries the full validation result so callers receive
// every offending line and account, not just the first.
type ValidationFailedError struct {
	Result domain.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("journal validation failed with %d issue(s)", len(e.Result.Issues))
}

// Unwrap lets errors.Is match apperrors.ErrValidation.
func (e *ValidationFailedError) Unwrap() error { return apperrors.ErrValidation }

// postingService runs the posting pipeline: idempotency admit, validation,
// SoD evaluation, posting decision, and the atomic write.
type postingService struct {
	journalRepo    portsrepo.JournalRepositoryWithTx
	accountRepo    portsrepo.AccountReader
	validator      portssvc.JournalValidatorSvc
	sodSvc         portssvc.SoDPolicySvc
	idempotencySvc portssvc.IdempotencyGateSvc
}

// NewPostingService creates the posting engine's orchestrating service.
func NewPostingService(
	journalRepo portsrepo.JournalRepositoryWithTx,
	accountRepo portsrepo.AccountReader,
	validator portssvc.JournalValidatorSvc,
	sodSvc portssvc.SoDPolicySvc,
	idempotencySvc portssvc.IdempotencyGateSvc,
) portssvc.PostingSvcFacade {
	return &postingService{
		journalRepo:    journalRepo,
		accountRepo:    accountRepo,
		validator:      validator,
		sodSvc:         sodSvc,
		idempotencySvc: idempotencySvc,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// PostJournal accepts a proposed journal, decides whether it may post
// immediately or must hold for approval, and persists the outcome together
// with the idempotency record in one transaction.
func (s *postingService) PostJournal(ctx context.Context, pctx domain.PostingContext, input dto.JournalPostingInput) (*dto.PostJournalResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Idempotency happens-before validation: a replayed request must return
	// the stored response without re-running any ledger-affecting step.
	requestHash := input.RequestHash()
	outcome, record, err := s.idempotencySvc.Admit(ctx, pctx.TenantID, input.IdempotencyKey, requestHash)
	if err != nil {
		return nil, err
	}
	if outcome == domain.AdmitReplay {
		var resp dto.PostJournalResponse
		if err := json.Unmarshal(record.ResponseSnapshot, &resp); err != nil {
			logger.Error("Stored idempotency snapshot is not decodable", slog.String("key", input.IdempotencyKey), slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: corrupt idempotency snapshot for key %s", apperrors.ErrInternal, input.IdempotencyKey)
		}
		return &resp, nil
	}

	lines := input.ToDomainLines()
	result, err := s.validator.Validate(ctx, pctx, input.CurrencyCode, lines)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		// Correctness before authority: an entry that is malformed is
		// rejected without consulting SoD at all.
		return nil, &ValidationFailedError{Result: result}
	}

	sod, err := s.sodSvc.Evaluate(pctx, domain.ActionPostJournal, result.TotalDebit)
	if err != nil {
		logger.Error("SoD policy evaluation failed", slog.String("error", err.Error()), slog.String("role", string(pctx.UserRole)))
		return nil, err
	}
	if !sod.Allowed {
		logger.Warn("SoD policy denied posting", slog.String("role", string(pctx.UserRole)), slog.String("reason", sod.Reason))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, sod.Reason)
	}

	status := DecideInitialStatus(sod)
	now := time.Now().UTC()
	journal := s.buildJournal(pctx, input, result, sod, status, now)

	// Balance changes apply only when the journal posts immediately; a
	// pending journal has no ledger effect until approved.
	var balanceChanges map[string]decimal.Decimal
	if status == domain.Posted {
		balanceChanges, err = balanceChangesFor(journal.Lines, result.Accounts)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.PostJournalResponse{
		JournalID:        journal.JournalID,
		JournalNumber:    journal.JournalNumber,
		Status:           string(status),
		TotalDebit:       result.TotalDebit,
		TotalCredit:      result.TotalCredit,
		RequiresApproval: sod.RequiresApproval,
		ApproverRoles:    journal.ApproverRoles,
		Warnings:         result.Warnings,
	}
	snapshot, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to snapshot response: %v", apperrors.ErrInternal, err)
	}

	idemRecord := domain.IdempotencyRecord{
		Key:              input.IdempotencyKey,
		TenantID:         pctx.TenantID,
		RequestHash:      requestHash,
		ResponseSnapshot: snapshot,
		CreatedAt:        now,
	}
	if err := s.journalRepo.SaveJournal(ctx, journal, idemRecord, balanceChanges); err != nil {
		logger.Error("Failed to save journal", slog.String("error", err.Error()), slog.String("journal_number", input.JournalNumber))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	logger.Info("Journal accepted",
		slog.String("journal_id", journal.JournalID),
		slog.String("status", string(status)),
		slog.Int("warnings", len(result.Warnings)),
	)
	return resp, nil
}

// buildJournal assembles the persisted journal: caller lines plus derived tax
// lines, totals from the validator, approver roles from the SoD decision.
func (s *postingService) buildJournal(pctx domain.PostingContext, input dto.JournalPostingInput, result domain.ValidationResult, sod domain.SoDDecision, status domain.JournalStatus, now time.Time) domain.Journal {
	journalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     pctx.UserID,
		LastUpdatedAt: now,
		LastUpdatedBy: pctx.UserID,
	}

	allLines := make([]domain.JournalLine, 0, len(input.Lines)+len(result.TaxLines))
	for _, line := range input.ToDomainLines() {
		line.LineID = uuid.NewString()
		line.JournalID = journalID
		line.AuditFields = audit
		allLines = append(allLines, line)
	}
	for _, taxLine := range result.TaxLines {
		taxLine.LineID = uuid.NewString()
		taxLine.JournalID = journalID
		taxLine.AuditFields = audit
		allLines = append(allLines, taxLine)
	}

	var approverRoles []string
	for _, role := range sod.ApproverRoles {
		approverRoles = append(approverRoles, string(role))
	}

	return domain.Journal{
		JournalID:     journalID,
		TenantID:      pctx.TenantID,
		CompanyID:     pctx.CompanyID,
		JournalNumber: input.JournalNumber,
		JournalDate:   input.JournalDate,
		Description:   input.Description,
		CurrencyCode:  input.CurrencyCode,
		Status:        status,
		TotalDebit:    result.TotalDebit,
		TotalCredit:   result.TotalCredit,
		ApproverRoles: approverRoles,
		Lines:         allLines,
		AuditFields:   audit,
	}
}

// ApproveJournal posts a PENDING_APPROVAL journal. Self-approval is forbidden
// regardless of role, even if the policy table were misconfigured.
func (s *postingService) ApproveJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.fetchScopedJournal(ctx, pctx, journalID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(journal.Status, domain.Posted) || journal.Status != domain.PendingApproval {
		return nil, fmt.Errorf("%w: journal status is %s: %s", apperrors.ErrConflict, journal.Status, ErrJournalNotPending)
	}
	if pctx.UserID == journal.CreatedBy {
		logger.Warn("Self-approval attempt rejected", slog.String("journal_id", journalID), slog.String("user_id", pctx.UserID))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrSelfApproval)
	}
	if !roleIn(pctx.UserRole, journal.ApproverRoles) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotApproverRole)
	}
	// Policy backstop: the approver's role must also pass SoD for this amount.
	sod, err := s.sodSvc.Evaluate(pctx, domain.ActionApproveJournal, journal.TotalDebit)
	if err != nil {
		return nil, err
	}
	if !sod.Allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, sod.Reason)
	}

	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for journal %s: %w", journalID, err)
	}
	accounts, err := s.accountsForLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := balanceChangesFor(lines, accounts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	approver := pctx.UserID
	if err := s.journalRepo.UpdateJournalStatus(ctx, journalID, domain.Posted, &approver, balanceChanges, pctx.UserID, now); err != nil {
		logger.Error("Failed to post approved journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to post approved journal: %w", err)
	}

	journal.Status = domain.Posted
	journal.ApprovedBy = &approver
	journal.ApprovedAt = &now
	journal.LastUpdatedAt = now
	journal.LastUpdatedBy = pctx.UserID
	journal.Lines = lines
	logger.Info("Journal approved and posted", slog.String("journal_id", journalID), slog.String("approved_by", approver))
	return journal, nil
}

// RejectJournal moves a PENDING_APPROVAL journal to REJECTED. The authority
// rules mirror ApproveJournal: same roles may reject, the creator may not.
func (s *postingService) RejectJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.fetchScopedJournal(ctx, pctx, journalID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(journal.Status, domain.Rejected) {
		return nil, fmt.Errorf("%w: journal status is %s: %s", apperrors.ErrConflict, journal.Status, ErrJournalNotPending)
	}
	if pctx.UserID == journal.CreatedBy {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrSelfApproval)
	}
	if !roleIn(pctx.UserRole, journal.ApproverRoles) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotApproverRole)
	}

	now := time.Now().UTC()
	// A rejection has no ledger effect; only the status changes.
	if err := s.journalRepo.UpdateJournalStatus(ctx, journalID, domain.Rejected, nil, nil, pctx.UserID, now); err != nil {
		logger.Error("Failed to reject journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to reject journal: %w", err)
	}

	journal.Status = domain.Rejected
	journal.LastUpdatedAt = now
	journal.LastUpdatedBy = pctx.UserID
	logger.Info("Journal rejected", slog.String("journal_id", journalID), slog.String("rejected_by", pctx.UserID))
	return journal, nil
}

// ReverseJournal creates a journal that exactly negates a POSTED one. The
// reversal is a fresh journal: the balance invariant applies to it
// identically, and SoD policy decides whether it posts now or holds for
// approval.
func (s *postingService) ReverseJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.fetchScopedJournal(ctx, pctx, journalID)
	if err != nil {
		return nil, err
	}
	if original.OriginalJournalID != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrReversalOfReversal)
	}

	// A reversal carries a key derived from the original journal, so a
	// retried reversal replays the stored outcome instead of negating twice.
	outcome, existing, err := s.idempotencySvc.Admit(ctx, pctx.TenantID, "reversal:"+original.JournalID, reversalRequestHash(original.JournalID))
	if err != nil {
		return nil, err
	}
	if outcome == domain.AdmitReplay {
		var snapshot struct {
			JournalID string `json:"journalID"`
		}
		if err := json.Unmarshal(existing.ResponseSnapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("%w: corrupt reversal snapshot for journal %s", apperrors.ErrInternal, original.JournalID)
		}
		return s.GetJournalByID(ctx, pctx, snapshot.JournalID)
	}
	if !CanTransition(original.Status, domain.Reversed) {
		return nil, fmt.Errorf("%w: journal status is %s: %s", apperrors.ErrConflict, original.Status, ErrNotPosted)
	}

	sod, err := s.sodSvc.Evaluate(pctx, domain.ActionReverseJournal, original.TotalDebit)
	if err != nil {
		return nil, err
	}
	if !sod.Allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, sod.Reason)
	}

	originalLines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for journal %s: %w", journalID, err)
	}

	status := DecideInitialStatus(sod)
	now := time.Now().UTC()
	reversalID := uuid.NewString()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: pctx.UserID, LastUpdatedAt: now, LastUpdatedBy: pctx.UserID}

	reversalLines := make([]domain.JournalLine, len(originalLines))
	for i, orig := range originalLines {
		reversalLines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			JournalID:   reversalID,
			AccountID:   orig.AccountID,
			Debit:       orig.Credit, // sides swap, amounts stay exact
			Credit:      orig.Debit,
			Description: orig.Description,
			TaxCode:     orig.TaxCode,
			CostCenter:  orig.CostCenter,
			IsTaxLine:   orig.IsTaxLine,
			AuditFields: audit,
		}
	}

	var approverRoles []string
	for _, role := range sod.ApproverRoles {
		approverRoles = append(approverRoles, string(role))
	}

	reversal := domain.Journal{
		JournalID:         reversalID,
		TenantID:          original.TenantID,
		CompanyID:         original.CompanyID,
		JournalNumber:     original.JournalNumber + "-REV",
		JournalDate:       now,
		Description:       fmt.Sprintf("Reversal of journal %s: %s", original.JournalNumber, original.Description),
		CurrencyCode:      original.CurrencyCode,
		Status:            status,
		TotalDebit:        original.TotalCredit,
		TotalCredit:       original.TotalDebit,
		ApproverRoles:     approverRoles,
		OriginalJournalID: &original.JournalID,
		Lines:             reversalLines,
		AuditFields:       audit,
	}

	var balanceChanges map[string]decimal.Decimal
	if status == domain.Posted {
		accounts, err := s.accountsForLines(ctx, reversalLines)
		if err != nil {
			return nil, err
		}
		balanceChanges, err = balanceChangesFor(reversalLines, accounts)
		if err != nil {
			return nil, err
		}
	}

	// The reversal carries a derived idempotency key so a retried reversal
	// of the same journal cannot produce two negating entries.
	record := domain.IdempotencyRecord{
		Key:              "reversal:" + original.JournalID,
		TenantID:         pctx.TenantID,
		RequestHash:      reversalRequestHash(original.JournalID),
		ResponseSnapshot: []byte(fmt.Sprintf(`{"journalID":%q,"status":%q}`, reversalID, status)),
		CreatedAt:        now,
	}

	if err := s.journalRepo.SaveReversal(ctx, reversal, record, balanceChanges, status == domain.Posted); err != nil {
		logger.Error("Failed to save reversal journal", slog.String("error", err.Error()), slog.String("original_journal_id", journalID))
		return nil, fmt.Errorf("failed to save reversal journal: %w", err)
	}

	logger.Info("Journal reversal created", slog.String("reversal_journal_id", reversalID), slog.String("original_journal_id", journalID), slog.String("status", string(status)))
	return &reversal, nil
}

// GetJournalByID retrieves a journal with its lines, scoped to the caller's
// company.
func (s *postingService) GetJournalByID(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	journal, err := s.fetchScopedJournal(ctx, pctx, journalID)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for journal %s: %w", journalID, err)
	}
	journal.Lines = lines
	return journal, nil
}

// ListJournals retrieves a paginated list of journals for the company.
func (s *postingService) ListJournals(ctx context.Context, pctx domain.PostingContext, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	journals, nextToken, err := s.journalRepo.ListJournalsByCompany(ctx, pctx.CompanyID, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		logger.Error("Failed to list journals", slog.String("error", err.Error()), slog.String("company_id", pctx.CompanyID))
		return nil, fmt.Errorf("failed to retrieve journals: %w", err)
	}

	responses := make([]dto.JournalResponse, len(journals))
	for i := range journals {
		if params.IncludeLines {
			lines, err := s.journalRepo.FindLinesByJournalID(ctx, journals[i].JournalID)
			if err != nil {
				logger.Warn("Failed to fetch lines for listed journal", slog.String("journal_id", journals[i].JournalID), slog.String("error", err.Error()))
			} else {
				journals[i].Lines = lines
			}
		}
		responses[i] = dto.ToJournalResponse(&journals[i])
	}
	return &dto.ListJournalsResponse{Journals: responses, NextToken: nextToken}, nil
}

// ListLinesByAccount retrieves posted lines for one account, paginated.
func (s *postingService) ListLinesByAccount(ctx context.Context, pctx domain.PostingContext, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	lines, nextToken, err := s.journalRepo.ListLinesByAccountID(ctx, pctx.CompanyID, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines: %w", err)
	}
	return &dto.ListLinesResponse{Lines: dto.ToJournalLineResponses(lines), NextToken: nextToken}, nil
}

// fetchScopedJournal loads a journal and obscures its existence when it
// belongs to a different company than the caller's scope.
func (s *postingService) fetchScopedJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}
	if journal.CompanyID != pctx.CompanyID || journal.TenantID != pctx.TenantID {
		return nil, apperrors.ErrNotFound
	}
	return journal, nil
}

// accountsForLines fetches the accounts referenced by a line set. A lookup
// failure fails closed.
func (s *postingService) accountsForLines(ctx context.Context, lines []domain.JournalLine) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: account lookup failed: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	return accounts, nil
}

// balanceChangesFor computes the net persisted-balance delta per account: a
// debit increases a debit-normal account and decreases a credit-normal one.
func balanceChangesFor(lines []domain.JournalLine, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	for _, line := range lines {
		acc, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s missing during balance calculation", apperrors.ErrInternal, line.AccountID)
		}
		delta := line.Debit.Sub(line.Credit)
		if acc.NormalBalance == domain.CreditSide {
			delta = delta.Neg()
		}
		changes[line.AccountID] = changes[line.AccountID].Add(delta)
	}
	return changes, nil
}

// roleIn reports whether the role appears in the stored approver role list.
func roleIn(role domain.Role, roles []string) bool {
	for _, r := range roles {
		if string(role) == r {
			return true
		}
	}
	return false
}

// reversalRequestHash derives the idempotency hash for a reversal request.
func reversalRequestHash(originalJournalID string) string {
	sum := sha256.Sum256([]byte("REVERSE|" + originalJournalID))
	return hex.EncodeToString(sum[:])
}
