package tradier

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rootski/optionskit-backend/internal/model"
)

// GetQuotes fetches quotes for a batch of symbols in a single call.
// Symbols absent from the vendor's book are silently missing from the
// result; an empty result is not an error.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("get quotes: no symbols")
	}

	query := url.Values{}
	query.Set("symbols", strings.ToUpper(strings.Join(symbols, ",")))
	query.Set("greeks", "false")

	var resp quotesResponse
	if err := c.get(ctx, "/markets/quotes", query, &resp); err != nil {
		return nil, fmt.Errorf("get quotes: %w", err)
	}

	quotes := make([]model.Quote, 0, len(resp.Quotes.Quote))
	for _, q := range resp.Quotes.Quote {
		if q.Symbol == "" {
			continue
		}
		quotes = append(quotes, q.ToModel())
	}

	return quotes, nil
}
