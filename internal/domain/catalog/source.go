package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/higiplas/backend/internal/domain/shared"
)

// ErrCatalogUnavailable signals that the underlying product store could not
// be reached. Fetch failures are wrapped with this sentinel so callers can
// distinguish infrastructure failures from "no match" outcomes.
var ErrCatalogUnavailable = shared.NewDomainError("CATALOG_UNAVAILABLE", "Product catalog could not be loaded")

// Source fetches the full catalog for a tenant from the product store.
// Implementations must never return entries belonging to another tenant.
type Source interface {
	// FetchAll returns every matchable catalog entry for the tenant,
	// with derived fields populated.
	FetchAll(ctx context.Context, tenantID uuid.UUID) ([]Entry, error)
}
