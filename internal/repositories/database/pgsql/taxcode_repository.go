package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	"github.com/quantabooks/ledger_engine/internal/models"
	"github.com/quantabooks/ledger_engine/internal/utils/mapping"
)

type PgxTaxCodeRepository struct {
	pool *pgxpool.Pool
}

// NewTaxCodeRepository creates a new repository for tax master data.
func NewTaxCodeRepository(pool *pgxpool.Pool) portsrepo.TaxCodeReader {
	return &PgxTaxCodeRepository{pool: pool}
}

// Ensure PgxTaxCodeRepository implements portsrepo.TaxCodeReader
var _ portsrepo.TaxCodeReader = (*PgxTaxCodeRepository)(nil)

// FindTaxCodesByCodes retrieves multiple tax codes for a company in one round
// trip, keyed by code. Unknown codes are simply absent from the map.
func (r *PgxTaxCodeRepository) FindTaxCodesByCodes(ctx context.Context, companyID string, codes []string) (map[string]domain.TaxCode, error) {
	if len(codes) == 0 {
		return map[string]domain.TaxCode{}, nil
	}

	query := `
		SELECT code, tenant_id, company_id, name, rate, tax_account_id, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM tax_codes
		WHERE company_id = $1 AND code = ANY($2);
	`

	rows, err := r.pool.Query(ctx, query, companyID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax codes for company %s: %w", companyID, err)
	}
	defer rows.Close()

	codesMap := make(map[string]domain.TaxCode)
	for rows.Next() {
		var m models.TaxCode
		err := rows.Scan(
			&m.Code,
			&m.TenantID,
			&m.CompanyID,
			&m.Name,
			&m.Rate,
			&m.TaxAccountID,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax code row: %w", err)
		}
		codesMap[m.Code] = mapping.ToDomainTaxCode(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax code rows: %w", err)
	}

	return codesMap, nil
}
