package tradier

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rootski/optionskit-backend/internal/model"
)

// GetExpirations fetches the available expiration dates (YYYY-MM-DD) for
// an underlying, each with its listed strikes, in vendor order.
func (c *Client) GetExpirations(ctx context.Context, symbol string) ([]model.ExpirationData, error) {
	symbol = strings.ToUpper(symbol)

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("includeAllRoots", "true")
	query.Set("strikes", "true")

	var resp expirationsResponse
	if err := c.get(ctx, "/markets/options/expirations", query, &resp); err != nil {
		return nil, fmt.Errorf("get expirations %s: %w", symbol, err)
	}

	out := make([]model.ExpirationData, 0, len(resp.Expirations.Expiration))
	for _, e := range resp.Expirations.Expiration {
		if e.Date == "" {
			continue
		}
		out = append(out, model.ExpirationData{
			Date:    e.Date,
			Strikes: []float64(e.Strikes.Strike),
		})
	}

	return out, nil
}
