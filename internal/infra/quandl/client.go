package quandl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stocks-skill/internal/domain"
)

const (
	DefaultBaseURL   = "https://www.quandl.com"
	DefaultNamespace = "SSE"

	// Closing price column of the SSE datasets.
	priceColumn  = "3"
	maxBodyBytes = 1 << 20
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=quandl_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches the latest closing price of a dataset. Every call performs
// exactly one request.
type Client struct {
	apiKey     string
	baseURL    string
	namespace  string
	timeout    time.Duration
	httpClient HTTPClient
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the scheme and host of the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithNamespace sets the database code, e.g. SSE.
func WithNamespace(namespace string) Option {
	return func(c *Client) {
		c.namespace = namespace
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each fetch. Zero leaves the transport default in place.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		namespace:  DefaultNamespace,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL builds the dataset request for ticker, limited to the most recent row
// and the closing price column.
func (c *Client) URL(ticker domain.TickerSymbol) string {
	return c.buildURL(ticker, c.apiKey)
}

func (c *Client) buildURL(ticker domain.TickerSymbol, apiKey string) string {
	query := url.Values{}
	query.Set("limit", "1")
	query.Set("column_index", priceColumn)
	query.Set("api_key", apiKey)

	return c.baseURL + "/api/v3/datasets/" + url.PathEscape(c.namespace) + "/" +
		url.PathEscape(string(ticker)) + ".json?" + query.Encode()
}

// Fetch returns the latest price point of ticker. Any failure is returned as
// a *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, ticker domain.TickerSymbol) (domain.PricePoint, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	point, ferr := c.fetch(ctx, ticker)
	if ferr != nil {
		c.logger.Error("fetching price",
			"ticker", ticker,
			"kind", ferr.Kind,
			"duration", time.Since(start),
			"error", ferr,
		)
		return domain.PricePoint{}, ferr
	}

	c.logger.Debug("fetched price",
		"ticker", ticker,
		"date", point.Date,
		"price", point.Price.String(),
		"duration", time.Since(start),
	)
	return point, nil
}

func (c *Client) fetch(ctx context.Context, ticker domain.TickerSymbol) (domain.PricePoint, *domain.FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(ticker), http.NoBody)
	if err != nil {
		return domain.PricePoint{}, &domain.FetchError{Kind: domain.KindTransport, Ticker: ticker, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PricePoint{}, c.transportError(ctx, ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return domain.PricePoint{}, &domain.FetchError{Kind: domain.KindStatus, Ticker: ticker, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isJSON(contentType) {
		drain(resp.Body)
		return domain.PricePoint{}, &domain.FetchError{Kind: domain.KindContentType, Ticker: ticker, StatusCode: resp.StatusCode, ContentType: contentType}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return domain.PricePoint{}, c.transportError(ctx, ticker, err)
	}
	if len(body) > maxBodyBytes {
		return domain.PricePoint{}, &domain.FetchError{Kind: domain.KindMalformed, Ticker: ticker, Err: errors.New("response body too large")}
	}

	point, err := parseLatest(body)
	if err != nil {
		return domain.PricePoint{}, &domain.FetchError{Kind: domain.KindMalformed, Ticker: ticker, Err: err}
	}
	return point, nil
}

// transportError classifies err and strips the API key that net/http puts
// into *url.Error messages.
func (c *Client) transportError(ctx context.Context, ticker domain.TickerSymbol, err error) *domain.FetchError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = &url.Error{Op: urlErr.Op, URL: c.buildURL(ticker, "REDACTED"), Err: urlErr.Err}
	}

	kind := domain.KindTransport
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = domain.KindTimeout
	}
	return &domain.FetchError{Kind: kind, Ticker: ticker, Err: err}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// drain consumes the rest of the body so the connection can be reused.
func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxBodyBytes))
}
