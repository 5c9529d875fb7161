package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	"github.com/quantabooks/ledger_engine/internal/models"
	"github.com/quantabooks/ledger_engine/internal/utils/mapping"
)

type PgxIdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new repository for idempotency records.
func NewIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyRepositoryFacade {
	return &PgxIdempotencyRepository{pool: pool}
}

// Ensure PgxIdempotencyRepository implements portsrepo.IdempotencyRepositoryFacade
var _ portsrepo.IdempotencyRepositoryFacade = (*PgxIdempotencyRepository)(nil)

// FindRecordByKey retrieves the record for a key within a tenant.
func (r *PgxIdempotencyRepository) FindRecordByKey(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT key, tenant_id, request_hash, response_snapshot, created_at
		FROM idempotency_keys
		WHERE tenant_id = $1 AND key = $2;
	`
	var m models.IdempotencyKey
	err := r.pool.QueryRow(ctx, query, tenantID, key).Scan(
		&m.Key,
		&m.TenantID,
		&m.RequestHash,
		&m.ResponseSnapshot,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find idempotency record for key %s: %w", key, err)
	}

	record := mapping.ToDomainIdempotencyRecord(m)
	return &record, nil
}

// SaveRecordInTx inserts the record within the caller's transaction. A unique
// violation means two requests raced on the same key; the loser surfaces it
// as a duplicate so the caller can re-read the winner's record.
func (r *PgxIdempotencyRepository) SaveRecordInTx(ctx context.Context, tx pgx.Tx, record domain.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_keys (key, tenant_id, request_hash, response_snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := tx.Exec(ctx, query,
		record.Key,
		record.TenantID,
		record.RequestHash,
		record.ResponseSnapshot,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: idempotency key %s already recorded", apperrors.ErrDuplicate, record.Key)
		}
		return fmt.Errorf("failed to save idempotency record for key %s: %w", record.Key, err)
	}
	return nil
}
