package model

// Quote is a normalized market quote for a single underlying.
//
// The six core fields (Symbol through Volume) are always present; numeric
// fields default to zero when the vendor omits or mangles them. The vendor
// extras are carried on the chain/expiration paths and trimmed before a
// quote enters the snapshot.
type Quote struct {
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	Last        float64 `json:"last"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	Volume      int64   `json:"volume"`

	// Vendor extras (not stored in the snapshot).
	Exchange      string  `json:"exchange,omitempty"`
	TradeTime     string  `json:"trade_time,omitempty"`
	Change        float64 `json:"change,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`
}

// Core returns the quote projected down to the six snapshot fields.
func (q Quote) Core() Quote {
	return Quote{
		Symbol:      q.Symbol,
		Description: q.Description,
		Last:        q.Last,
		Bid:         q.Bid,
		Ask:         q.Ask,
		Volume:      q.Volume,
	}
}

// OptionContract is a single normalized option chain entry.
type OptionContract struct {
	Symbol       string  `json:"symbol"` // Underlying ticker
	Expiry       string  `json:"expiry"` // YYYY-MM-DD
	Strike       float64 `json:"strike"`
	Type         string  `json:"type"` // "call" or "put"
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	Last         float64 `json:"last"`
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"open_interest"`

	// Greeks, zero-valued when the vendor omits them.
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	IV    float64 `json:"iv"`
}

// OptionChain is the full chain for one underlying and expiry.
type OptionChain struct {
	Symbol    string           `json:"symbol"`
	Expiry    string           `json:"expiry"`
	Contracts []OptionContract `json:"contracts"`
}

// ExpirationData is one expiration date with its listed strikes.
type ExpirationData struct {
	Date    string    `json:"date"` // YYYY-MM-DD
	Strikes []float64 `json:"strikes"`
}
