package signalapi

import (
	"context"
	"fmt"
	"net/http"

	"signalgen/internal/services"
	"signalgen/internal/signal"
)

// Catalog fetches the pattern catalog for family. Every failure matches
// services.ErrCatalogUnavailable; transport failures also match
// services.ErrNetwork. A failed result is never partially returned.
func (c *Client) Catalog(ctx context.Context, family signal.Family) (signal.PatternCatalog, error) {
	if !family.Valid() {
		return signal.PatternCatalog{}, services.Wrap(services.ErrValidation, "signalapi", "catalog", fmt.Sprintf("unknown family %q", family), nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CatalogTimeout)
	defer cancel()

	resp, err := c.do(ctx, "catalog", http.MethodGet, fmt.Sprintf("%s/%s/types", c.cfg.BaseURL, family), nil)
	if err != nil {
		netErr := services.Wrap(services.ErrNetwork, "signalapi", "catalog", "request failed", err)
		return signal.PatternCatalog{}, services.Wrap(services.ErrCatalogUnavailable, "signalapi", "catalog", family.Label(), netErr)
	}
	defer drainClose(resp)
	if resp.StatusCode >= 300 {
		return signal.PatternCatalog{}, services.Wrap(services.ErrCatalogUnavailable, "signalapi", "catalog", family.Label(), newStatusError(resp))
	}

	catalog, err := signal.DecodeCatalog(family, resp.Body)
	if err != nil {
		return signal.PatternCatalog{}, services.Wrap(services.ErrCatalogUnavailable, "signalapi", "catalog", family.Label(), err)
	}
	return catalog, nil
}
