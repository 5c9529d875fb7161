package services

import (
	"context"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
	"github.com/quantabooks/ledger_engine/internal/dto"
)

// PostingReaderSvc defines read operations over journals the engine produced.
type PostingReaderSvc interface {
	// GetJournalByID retrieves a journal with its lines.
	GetJournalByID(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals for the company.
	ListJournals(ctx context.Context, pctx domain.PostingContext, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// ListLinesByAccount retrieves posted lines for a specific account.
	ListLinesByAccount(ctx context.Context, pctx domain.PostingContext, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// PostingWriterSvc defines the ledger-affecting operations of the engine.
type PostingWriterSvc interface {
	// PostJournal runs the full pipeline: idempotency admit, validation,
	// SoD evaluation, posting decision, atomic write.
	PostJournal(ctx context.Context, pctx domain.PostingContext, input dto.JournalPostingInput) (*dto.PostJournalResponse, error)

	// ApproveJournal posts a PENDING_APPROVAL journal. The approver must
	// hold one of the journal's approver roles and must not be the creator.
	ApproveJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error)

	// RejectJournal rejects a PENDING_APPROVAL journal. Same authority rules
	// as ApproveJournal.
	RejectJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error)

	// ReverseJournal creates a journal that exactly negates a POSTED one.
	ReverseJournal(ctx context.Context, pctx domain.PostingContext, journalID string) (*domain.Journal, error)
}

// PostingSvcFacade combines all posting-related service interfaces.
type PostingSvcFacade interface {
	PostingReaderSvc
	PostingWriterSvc
}
