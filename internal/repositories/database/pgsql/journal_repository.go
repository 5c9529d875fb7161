package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	"github.com/quantabooks/ledger_engine/internal/models"
	"github.com/quantabooks/ledger_engine/internal/utils/mapping"
	"github.com/quantabooks/ledger_engine/internal/utils/pagination"
)

const journalColumns = `journal_id, tenant_id, company_id, journal_number, journal_date, description, currency_code, status, total_debit, total_credit, approver_roles, approved_by, approved_at, original_journal_id, reversing_journal_id, created_at, created_by, last_updated_at, last_updated_by`

const journalLineColumns = `line_id, journal_id, account_id, debit, credit, description, tax_code, cost_center, is_tax_line, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo     portsrepo.AccountRepositoryFacade
	idempotencyRepo portsrepo.IdempotencyRepositoryFacade
}

// NewJournalRepository creates a new repository for journal and line data.
// The account and idempotency repositories are injected so journal writes can
// apply balance changes and record the idempotency key inside one transaction.
func NewJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, idempotencyRepo portsrepo.IdempotencyRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository:  BaseRepository{Pool: pool},
		accountRepo:     accountRepo,
		idempotencyRepo: idempotencyRepo,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanJournal(row pgx.Row) (models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.TenantID,
		&m.CompanyID,
		&m.JournalNumber,
		&m.JournalDate,
		&m.Description,
		&m.CurrencyCode,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.ApproverRoles,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.OriginalJournalID,
		&m.ReversingJournalID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanJournalLine(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.JournalID,
		&m.AccountID,
		&m.Debit,
		&m.Credit,
		&m.Description,
		&m.TaxCode,
		&m.CostCenter,
		&m.IsTaxLine,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxJournalRepository) insertJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	modelJournal := mapping.ToModelJournal(journal)
	query := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := tx.Exec(ctx, query,
		modelJournal.JournalID,
		modelJournal.TenantID,
		modelJournal.CompanyID,
		modelJournal.JournalNumber,
		modelJournal.JournalDate,
		modelJournal.Description,
		modelJournal.CurrencyCode,
		modelJournal.Status,
		modelJournal.TotalDebit,
		modelJournal.TotalCredit,
		modelJournal.ApproverRoles,
		modelJournal.ApprovedBy,
		modelJournal.ApprovedAt,
		modelJournal.OriginalJournalID,
		modelJournal.ReversingJournalID,
		modelJournal.CreatedAt,
		modelJournal.CreatedBy,
		modelJournal.LastUpdatedAt,
		modelJournal.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: journal %s already exists", apperrors.ErrDuplicate, modelJournal.JournalID)
		}
		return fmt.Errorf("failed to insert journal %s: %w", modelJournal.JournalID, err)
	}
	return nil
}

func (r *PgxJournalRepository) insertLinesInTx(ctx context.Context, tx pgx.Tx, journalID string, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO journal_lines (` + journalLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelJournalLine(line)
		batch.Queue(query,
			m.LineID,
			m.JournalID,
			m.AccountID,
			m.Debit,
			m.Credit,
			m.Description,
			m.TaxCode,
			m.CostCenter,
			m.IsTaxLine,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line batch for journal %s: %w", journalID, err)
	}
	return nil
}

// SaveJournal persists a journal with its lines, the idempotency record for
// the request, and any balance changes, atomically.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, record domain.IdempotencyRecord, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertJournalInTx(ctx, tx, journal); err != nil {
		return err
	}

	if err := r.insertLinesInTx(ctx, tx, journal.JournalID, journal.Lines); err != nil {
		return err
	}

	if err := r.idempotencyRepo.SaveRecordInTx(ctx, tx, record); err != nil {
		return err
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, journal.CreatedBy, journal.CreatedAt); err != nil {
		return fmt.Errorf("failed to update account balances for journal %s: %w", journal.JournalID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit transaction for journal %s: %w", journal.JournalID, err)
	}
	return nil
}

// UpdateJournalStatus transitions a journal's status, recording the approver
// and applying balance changes when the transition posts the journal.
func (r *PgxJournalRepository) UpdateJournalStatus(ctx context.Context, journalID string, status domain.JournalStatus, approvedBy *string, balanceChanges map[string]decimal.Decimal, updatedByUserID string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE journals
		SET status = $2, approved_by = COALESCE($3, approved_by), approved_at = CASE WHEN $3 IS NULL THEN approved_at ELSE $4 END, last_updated_at = $4, last_updated_by = $5
		WHERE journal_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, journalID, models.JournalStatus(status), approvedBy, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to update status for journal %s: %w", journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	// When a pending reversal posts via approval, the journal it negates
	// flips to REVERSED in the same transaction. Affects no rows for
	// journals that are not reversals.
	if status == domain.Posted {
		reversedQuery := `
			UPDATE journals o
			SET status = 'REVERSED', last_updated_at = $2, last_updated_by = $3
			FROM journals r
			WHERE r.journal_id = $1 AND o.journal_id = r.original_journal_id;
		`
		if _, err := tx.Exec(ctx, reversedQuery, journalID, updatedAt, updatedByUserID); err != nil {
			return fmt.Errorf("failed to mark original journal reversed for %s: %w", journalID, err)
		}
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, updatedByUserID, updatedAt); err != nil {
		return fmt.Errorf("failed to update account balances for journal %s: %w", journalID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit status update for journal %s: %w", journalID, err)
	}
	return nil
}

// SaveReversal persists a reversal journal and, when the reversal posts
// immediately, marks the original REVERSED and links both journals, all
// within one transaction.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, reversal domain.Journal, record domain.IdempotencyRecord, balanceChanges map[string]decimal.Decimal, markOriginalReversed bool) error {
	if reversal.OriginalJournalID == nil {
		return fmt.Errorf("%w: reversal journal %s has no original journal", apperrors.ErrInternal, reversal.JournalID)
	}
	originalID := *reversal.OriginalJournalID

	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertJournalInTx(ctx, tx, reversal); err != nil {
		return err
	}

	if err := r.insertLinesInTx(ctx, tx, reversal.JournalID, reversal.Lines); err != nil {
		return err
	}

	if err := r.idempotencyRepo.SaveRecordInTx(ctx, tx, record); err != nil {
		return err
	}

	linkQuery := `
		UPDATE journals
		SET reversing_journal_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE journal_id = $1;
	`
	if markOriginalReversed {
		linkQuery = `
			UPDATE journals
			SET reversing_journal_id = $2, status = 'REVERSED', last_updated_at = $3, last_updated_by = $4
			WHERE journal_id = $1;
		`
	}
	cmdTag, err := tx.Exec(ctx, linkQuery, originalID, reversal.JournalID, reversal.CreatedAt, reversal.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to link reversal to journal %s: %w", originalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, reversal.CreatedBy, reversal.CreatedAt); err != nil {
		return fmt.Errorf("failed to update account balances for reversal %s: %w", reversal.JournalID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit reversal %s: %w", reversal.JournalID, err)
	}
	return nil
}

// FindJournalByID retrieves a journal by its ID. Lines are not populated.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		WHERE journal_id = $1;
	`
	m, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}

	domainJournal := mapping.ToDomainJournal(m)
	return &domainJournal, nil
}

// FindLinesByJournalID retrieves all lines associated with a journal.
func (r *PgxJournalRepository) FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + journalLineColumns + `
		FROM journal_lines
		WHERE journal_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for journal %s: %w", journalID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		m, err := scanJournalLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for journal %s: %w", journalID, err)
		}
		lines = append(lines, mapping.ToDomainJournalLine(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for journal %s: %w", journalID, err)
	}
	return lines, nil
}

// ListJournalsByCompany retrieves a page of journals for a company, newest
// first, using an opaque cursor token.
func (r *PgxJournalRepository) ListJournalsByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{companyID}
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		WHERE company_id = $1
	`
	if !includeReversals {
		query += ` AND original_journal_id IS NULL`
	}

	if nextToken != nil && *nextToken != "" {
		journalDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, journalDate, createdAt)
		query += ` AND (journal_date, created_at) < ($2, $3)`
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY journal_date DESC, created_at DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journals for company %s: %w", companyID, err)
	}
	defer rows.Close()

	journals := []domain.Journal{}
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal row for company %s: %w", companyID, err)
		}
		journals = append(journals, mapping.ToDomainJournal(m))
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal rows for company %s: %w", companyID, err)
	}

	// One extra row was requested to detect whether another page exists.
	var newToken *string
	if len(journals) > limit {
		journals = journals[:limit]
		last := journals[len(journals)-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		newToken = &token
	}

	return journals, newToken, nil
}

// ListLinesByAccountID retrieves a page of lines for an account across
// POSTED journals in the company, newest first.
func (r *PgxJournalRepository) ListLinesByAccountID(ctx context.Context, companyID, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{companyID, accountID}
	query := `
		SELECT l.line_id, l.journal_id, l.account_id, l.debit, l.credit, l.description, l.tax_code, l.cost_center, l.is_tax_line, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by
		FROM journal_lines l
		JOIN journals j ON j.journal_id = l.journal_id
		WHERE j.company_id = $1 AND l.account_id = $2 AND j.status = 'POSTED'
	`

	if nextToken != nil && *nextToken != "" {
		createdAt, err := pagination.DecodeDateBasedToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		args = append(args, createdAt)
		query += ` AND l.created_at < $3`
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY l.created_at DESC, l.line_id DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines for account %s: %w", accountID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		m, err := scanJournalLine(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan line row for account %s: %w", accountID, err)
		}
		lines = append(lines, mapping.ToDomainJournalLine(m))
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating line rows for account %s: %w", accountID, err)
	}

	var newToken *string
	if len(lines) > limit {
		lines = lines[:limit]
		last := lines[len(lines)-1]
		token := pagination.EncodeDateBasedToken(last.CreatedAt)
		newToken = &token
	}

	return lines, newToken, nil
}
