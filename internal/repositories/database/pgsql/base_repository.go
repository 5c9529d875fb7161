package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
)

// BaseRepository provides the shared pool handle and transaction management.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.Pool.Begin(ctx)
}

// Commit commits a transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

// Rollback rolls back a transaction. Safe to defer: rolling back an already
// committed transaction is a no-op error that is ignored.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

// NewRepositoryProvider assembles all pgsql repositories over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := NewAccountRepository(pool)
	idempotencyRepo := NewIdempotencyRepository(pool)
	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		JournalRepo:     NewJournalRepository(pool, accountRepo, idempotencyRepo),
		TaxCodeRepo:     NewTaxCodeRepository(pool),
		IdempotencyRepo: idempotencyRepo,
	}
}
