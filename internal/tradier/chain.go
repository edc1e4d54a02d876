package tradier

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rootski/optionskit-backend/internal/model"
)

// GetOptionChain fetches the option chain for one underlying and expiry.
// Contracts whose expiration does not exactly match the requested expiry
// are filtered out.
func (c *Client) GetOptionChain(ctx context.Context, symbol, expiry string) (*model.OptionChain, error) {
	symbol = strings.ToUpper(symbol)

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("expiration", expiry)
	query.Set("greeks", "true")

	var resp chainResponse
	if err := c.get(ctx, "/markets/options/chains", query, &resp); err != nil {
		return nil, fmt.Errorf("get option chain %s %s: %w", symbol, expiry, err)
	}

	contracts := make([]model.OptionContract, 0, len(resp.Options.Option))
	for _, o := range resp.Options.Option {
		if o.expiry() != expiry {
			continue
		}

		contract := model.OptionContract{
			Symbol:       symbol,
			Expiry:       expiry,
			Strike:       fv(o.Strike),
			Type:         strings.ToLower(o.OptionType),
			Bid:          fv(o.Bid),
			Ask:          fv(o.Ask),
			Last:         fv(o.Last),
			Volume:       iv(o.Volume),
			OpenInterest: iv(o.OpenInterest),
		}
		if g := o.Greeks; g != nil {
			contract.Delta = fv(g.Delta)
			contract.Gamma = fv(g.Gamma)
			contract.Theta = fv(g.Theta)
			contract.Vega = fv(g.Vega)
			contract.IV = fv(g.MidIV)
			if contract.IV == 0 {
				contract.IV = fv(g.IV)
			}
		}
		contracts = append(contracts, contract)
	}

	return &model.OptionChain{
		Symbol:    symbol,
		Expiry:    expiry,
		Contracts: contracts,
	}, nil
}
