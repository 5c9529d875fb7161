package repositories

import (
	"context"

	"github.com/quantabooks/ledger_engine/internal/core/domain"
)

// TaxCodeReader defines read operations for tax master data. Tax codes are
// read-only to the posting engine; authoring lives elsewhere.
type TaxCodeReader interface {
	// FindTaxCodesByCodes retrieves multiple tax codes in one round trip,
	// keyed by code. Unknown codes are absent from the map, not an error.
	FindTaxCodesByCodes(ctx context.Context, companyID string, codes []string) (map[string]domain.TaxCode, error)
}
