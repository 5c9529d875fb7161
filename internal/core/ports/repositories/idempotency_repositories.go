package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// IdempotencyReader defines read operations for idempotency records.
type IdempotencyReader interface {
	// FindRecordByKey retrieves the record for a key within a tenant.
	// Returns apperrors.ErrNotFound when no record exists.
	FindRecordByKey(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error)
}

// IdempotencyWriter defines write operations for idempotency records.
type IdempotencyWriter interface {
	// SaveRecordInTx inserts the record within the posting transaction so a
	// crash between validation and commit leaves no partial effect.
	SaveRecordInTx(ctx context.Context, tx pgx.Tx, record domain.IdempotencyRecord) error
}

// IdempotencyRepositoryFacade combines all idempotency repository interfaces.
type IdempotencyRepositoryFacade interface {
	IdempotencyReader
	IdempotencyWriter
}
