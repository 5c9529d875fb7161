package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindLinesByJournalID retrieves all lines associated with a journal.
	FindLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error)

	// ListJournalsByCompany retrieves a paginated list of journals for a
	// company using token-based pagination.
	ListJournalsByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error)

	// ListLinesByAccountID retrieves a paginated list of posted lines for a
	// specific account using token-based pagination.
	ListLinesByAccountID(ctx context.Context, companyID, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// JournalWriter defines write operations for journal data. All writes that
// affect the ledger happen within one database transaction together with the
// idempotency record and any account balance changes.
type JournalWriter interface {
	// SaveJournal persists a journal with its lines, the idempotency record
	// for the request, and (for a POSTED journal) account balance changes,
	// atomically.
	SaveJournal(ctx context.Context, journal domain.Journal, record domain.IdempotencyRecord, balanceChanges map[string]decimal.Decimal) error

	// UpdateJournalStatus transitions a journal's status, recording the
	// approver and applying balance changes when the transition posts the
	// journal.
	UpdateJournalStatus(ctx context.Context, journalID string, status domain.JournalStatus, approvedBy *string, balanceChanges map[string]decimal.Decimal, updatedByUserID string, updatedAt time.Time) error

	// SaveReversal persists a reversal journal and, when the reversal posts
	// immediately, marks the original REVERSED and links both journals, all
	// within one transaction.
	SaveReversal(ctx context.Context, reversal domain.Journal, record domain.IdempotencyRecord, balanceChanges map[string]decimal.Decimal, markOriginalReversed bool) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction
// capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
