package massive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rootski/optionskit-backend/internal/model"
)

// DefaultBaseURL is the production Polygon API endpoint.
const DefaultBaseURL = "https://api.polygon.io"

// ErrMissingKey is returned when the client has no API key configured.
var ErrMissingKey = errors.New("massive api key not set")

// APIError represents a non-2xx response from the snapshot API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("massive api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client fetches per-underlying option snapshots.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a snapshot client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// snapshotResponse from GET /v3/snapshot/options/{underlying}. Field
// names vary slightly across snapshot endpoints, so the entry type reads
// from several locations and the accessors below pick the first populated
// one.
type snapshotResponse struct {
	Results []snapshotEntry `json:"results"`
	Options []snapshotEntry `json:"options"`
}

type snapshotEntry struct {
	Details  *contractDetails `json:"details"`
	Contract *contractDetails `json:"contract"`

	LastQuote *entryQuote `json:"last_quote"`
	Quote     *entryQuote `json:"quote"`

	Greeks *entryGreeks `json:"greeks"`
	Day    *entryDay    `json:"day"`

	ExpirationDate string   `json:"expiration_date"`
	ContractType   string   `json:"contract_type"`
	Strike         *float64 `json:"strike"`
	Bid            *float64 `json:"bid"`
	Ask            *float64 `json:"ask"`
	Last           *float64 `json:"last"`
	Close          *float64 `json:"close"`
	Volume         *int64   `json:"volume"`
	OpenInterest   *int64   `json:"open_interest"`
	IV             *float64 `json:"implied_volatility"`
}

type contractDetails struct {
	ExpirationDate string   `json:"expiration_date"`
	StrikePrice    *float64 `json:"strike_price"`
	ContractType   string   `json:"contract_type"`
}

type entryQuote struct {
	Bid  *float64 `json:"bid"`
	Ask  *float64 `json:"ask"`
	Last *float64 `json:"last"`
}

type entryGreeks struct {
	Delta *float64 `json:"delta"`
	Gamma *float64 `json:"gamma"`
	Theta *float64 `json:"theta"`
	Vega  *float64 `json:"vega"`
	IV    *float64 `json:"iv"`
}

type entryDay struct {
	Volume *int64   `json:"volume"`
	Close  *float64 `json:"close"`
}

func (e snapshotEntry) details() *contractDetails {
	if e.Details != nil {
		return e.Details
	}
	return e.Contract
}

func (e snapshotEntry) quote() *entryQuote {
	if e.LastQuote != nil {
		return e.LastQuote
	}
	return e.Quote
}

func (e snapshotEntry) expiry() string {
	if d := e.details(); d != nil && d.ExpirationDate != "" {
		return d.ExpirationDate
	}
	return e.ExpirationDate
}

// GetOptionChain fetches the per-underlying snapshot filtered to one
// expiry and normalizes it to the common chain shape.
func (c *Client) GetOptionChain(ctx context.Context, symbol, expiry string) (*model.OptionChain, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}
	symbol = strings.ToUpper(symbol)

	query := url.Values{}
	query.Set("expiration_date", expiry)
	query.Set("limit", "1000")
	query.Set("apiKey", c.apiKey)

	fullURL := fmt.Sprintf("%s/v3/snapshot/options/%s?%s", c.baseURL, symbol, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Body: body}
	}

	var resp snapshotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	entries := resp.Results
	if len(entries) == 0 {
		entries = resp.Options
	}

	contracts := make([]model.OptionContract, 0, len(entries))
	for _, e := range entries {
		entryExpiry := e.expiry()
		if entryExpiry == "" {
			entryExpiry = expiry
		}
		if entryExpiry != expiry {
			continue
		}

		contract := model.OptionContract{
			Symbol: symbol,
			Expiry: expiry,
		}

		if d := e.details(); d != nil {
			contract.Strike = fv(d.StrikePrice)
			contract.Type = strings.ToLower(d.ContractType)
		}
		if contract.Strike == 0 {
			contract.Strike = fv(e.Strike)
		}
		if contract.Type == "" {
			contract.Type = strings.ToLower(e.ContractType)
		}

		if q := e.quote(); q != nil {
			contract.Bid = fv(q.Bid)
			contract.Ask = fv(q.Ask)
			contract.Last = fv(q.Last)
		}
		if contract.Bid == 0 {
			contract.Bid = fv(e.Bid)
		}
		if contract.Ask == 0 {
			contract.Ask = fv(e.Ask)
		}
		if contract.Last == 0 {
			contract.Last = fv(e.Last)
			if contract.Last == 0 {
				contract.Last = fv(e.Close)
			}
		}

		if e.Day != nil {
			contract.Volume = iv(e.Day.Volume)
			if contract.Last == 0 {
				contract.Last = fv(e.Day.Close)
			}
		}
		if contract.Volume == 0 {
			contract.Volume = iv(e.Volume)
		}
		contract.OpenInterest = iv(e.OpenInterest)

		if g := e.Greeks; g != nil {
			contract.Delta = fv(g.Delta)
			contract.Gamma = fv(g.Gamma)
			contract.Theta = fv(g.Theta)
			contract.Vega = fv(g.Vega)
			contract.IV = fv(g.IV)
		}
		if contract.IV == 0 {
			contract.IV = fv(e.IV)
		}

		contracts = append(contracts, contract)
	}

	return &model.OptionChain{
		Symbol:    symbol,
		Expiry:    expiry,
		Contracts: contracts,
	}, nil
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
