package tradier

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/rootski/optionskit-backend/internal/model"
)

// Tradier wraps list payloads in a container whose inner field is absent
// for zero results, a bare object for one result, and an array otherwise.
// The list types below normalize all three shapes at the boundary so the
// rest of the system only ever sees a slice.

// quotesResponse from GET /markets/quotes
type quotesResponse struct {
	Quotes struct {
		Quote quoteList `json:"quote"`
	} `json:"quotes"`
}

type quoteList []apiQuote

func (l *quoteList) UnmarshalJSON(data []byte) error {
	return unmarshalOneOrMany(data, (*[]apiQuote)(l))
}

// apiQuote is a quote as the vendor returns it. Numeric fields are
// pointers because the vendor sends null outside market hours.
type apiQuote struct {
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	Exch        string   `json:"exch"`
	Last        *float64 `json:"last"`
	Bid         *float64 `json:"bid"`
	Ask         *float64 `json:"ask"`
	Change      *float64 `json:"change"`
	ChangePct   *float64 `json:"change_percentage"`
	Volume      *int64   `json:"volume"`
	TradeDate   int64    `json:"trade_date"` // ms since epoch, 0 when absent
}

// ToModel normalizes the vendor quote; missing numerics become zero.
func (q apiQuote) ToModel() model.Quote {
	var tradeTime string
	if q.TradeDate > 0 {
		tradeTime = time.UnixMilli(q.TradeDate).UTC().Format(time.RFC3339)
	}
	return model.Quote{
		Symbol:        q.Symbol,
		Description:   q.Description,
		Last:          fv(q.Last),
		Bid:           fv(q.Bid),
		Ask:           fv(q.Ask),
		Volume:        iv(q.Volume),
		Exchange:      q.Exch,
		TradeTime:     tradeTime,
		Change:        fv(q.Change),
		ChangePercent: fv(q.ChangePct),
	}
}

// chainResponse from GET /markets/options/chains
type chainResponse struct {
	Options struct {
		Option optionList `json:"option"`
	} `json:"options"`
}

type optionList []apiOption

func (l *optionList) UnmarshalJSON(data []byte) error {
	return unmarshalOneOrMany(data, (*[]apiOption)(l))
}

// apiOption is a chain entry as the vendor returns it.
type apiOption struct {
	ExpirationDate string   `json:"expiration_date"`
	Expiration     string   `json:"expiration"`
	Strike         *float64 `json:"strike"`
	OptionType     string   `json:"option_type"`
	Bid            *float64 `json:"bid"`
	Ask            *float64 `json:"ask"`
	Last           *float64 `json:"last"`
	Volume         *int64   `json:"volume"`
	OpenInterest   *int64   `json:"open_interest"`
	Greeks         *struct {
		Delta *float64 `json:"delta"`
		Gamma *float64 `json:"gamma"`
		Theta *float64 `json:"theta"`
		Vega  *float64 `json:"vega"`
		MidIV *float64 `json:"mid_iv"`
		IV    *float64 `json:"smv_vol"`
	} `json:"greeks"`
}

// expiry returns whichever expiration field the vendor populated.
func (o apiOption) expiry() string {
	if o.ExpirationDate != "" {
		return o.ExpirationDate
	}
	return o.Expiration
}

// expirationsResponse from GET /markets/options/expirations with
// strikes=true. With a single expiration the inner field is a bare
// object; with a single strike the strike field is a bare number.
type expirationsResponse struct {
	Expirations struct {
		Expiration expirationList `json:"expiration"`
	} `json:"expirations"`
}

type expirationList []apiExpiration

func (l *expirationList) UnmarshalJSON(data []byte) error {
	return unmarshalOneOrMany(data, (*[]apiExpiration)(l))
}

type apiExpiration struct {
	Date    string `json:"date"`
	Strikes struct {
		Strike strikeList `json:"strike"`
	} `json:"strikes"`
}

type strikeList []float64

func (l *strikeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		var one float64
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = strikeList{one}
		return nil
	}
	var many []float64
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// unmarshalOneOrMany decodes a payload that is null, a single object, or
// an array of objects into a slice.
func unmarshalOneOrMany[T any](data []byte, out *[]T) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*out = nil
		return nil
	}
	if data[0] == '{' {
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*out = []T{one}
		return nil
	}
	var many []T
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*out = many
	return nil
}

func fv(p *float64) float64 {
	if p == nil {
		return 0.0
	}
	return *p
}

func iv(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
