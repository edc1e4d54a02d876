package occfeed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is the OCC directory download endpoint.
const DefaultURL = "https://marketdata.theocc.com/delo-download?prodType=ALL&downloadFields=US;OS;SN;EXCH;PL;ONN&format=txt"

// FeedError represents a transport or HTTP failure fetching the feed.
type FeedError struct {
	StatusCode int
	Message    string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("occ feed error %d: %s", e.StatusCode, e.Message)
}

// Client fetches the OCC symbol directory.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a feed client. An empty url selects DefaultURL.
func NewClient(url string, opts ...ClientOption) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
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

// Fetch downloads the raw feed body. Non-2xx statuses and transport
// failures return an error; the body is returned as-is otherwise.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	c.logger.Info("downloading occ symbol directory", "url", c.url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch occ feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read occ feed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FeedError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	return string(body), nil
}
