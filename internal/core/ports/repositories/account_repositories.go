package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data. The
// posting engine never writes account master data; accounts are read-only
// collaborator state.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs in one
	// round trip, keyed by account ID. Missing IDs are absent from the map,
	// not an error.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}

// AccountBalanceSupport defines balance maintenance performed inside the
// journal posting transaction.
type AccountBalanceSupport interface {
	// UpdateAccountBalancesInTx applies net balance changes to multiple
	// accounts within the given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountBalanceSupport
}
