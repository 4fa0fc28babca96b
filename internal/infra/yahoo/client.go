package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"stock_go/internal/domain"
	"stock_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Client fetches stock quotes from the Yahoo Finance API on RapidAPI.
// Every call is a live network round trip: no retries, no caching.
type Client struct {
	baseURL    string
	host       string
	apiKey     string
	region     string
	httpClient *http.Client
	metrics    *infra.Metrics
	logger     *slog.Logger
}

// NewClient creates a quote client from the application configuration.
func NewClient(cfg *infra.Config, metrics *infra.Metrics) *Client {
	return &Client{
		baseURL: cfg.API.Yahoo.BaseURL,
		host:    cfg.API.Yahoo.Host,
		apiKey:  cfg.API.Yahoo.Key,
		region:  cfg.API.Yahoo.Region,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.API.Yahoo.TimeoutSec) * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		metrics: metrics,
		logger:  slog.Default().With("module", "yahoo_client"),
	}
}

// summaryResponse captures the one path of the get-summary document we need.
// The raw leaf arrives as a JSON number or a quoted string depending on the
// endpoint, so it is decoded in a second step.
type summaryResponse struct {
	Price struct {
		RegularMarketPrice struct {
			Raw json.RawMessage `json:"raw"`
		} `json:"regularMarketPrice"`
	} `json:"price"`
}

// FetchQuote returns the current market price for symbol.
// Non-2xx responses and transport failures surface as *domain.UpstreamError;
// a 2xx response without a usable price surfaces as domain.ErrPriceUnavailable.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	if symbol == "" {
		return domain.Quote{}, fmt.Errorf("%w: empty symbol", domain.ErrInvalidArgument)
	}

	if c.metrics != nil {
		c.metrics.RecordQuoteFetch()
	}

	reqURL := fmt.Sprintf("%s/stock/v2/get-summary?symbol=%s&region=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.region))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Quote{}, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamError()
		}
		return domain.Quote{}, &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamError()
		}
		return domain.Quote{}, &domain.UpstreamError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.metrics != nil {
			c.metrics.RecordUpstreamError()
		}
		c.logger.Warn("Quote request failed",
			slog.String("symbol", symbol),
			slog.Int("status", resp.StatusCode))
		return domain.Quote{}, &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	price, err := parsePrice(body)
	if err != nil {
		c.logger.Warn("Quote response unparseable",
			slog.String("symbol", symbol),
			slog.Any("error", err))
		return domain.Quote{}, err
	}

	return domain.Quote{
		Symbol:    symbol,
		Price:     price,
		FetchedAt: time.Now(),
	}, nil
}

// parsePrice extracts price.regularMarketPrice.raw. Any missing segment or a
// non-numeric leaf means the quote is unusable; a fabricated price is never
// substituted.
func parsePrice(body []byte) (decimal.Decimal, error) {
	var doc summaryResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}

	raw := doc.Price.RegularMarketPrice.Raw
	if len(raw) == 0 {
		return decimal.Zero, domain.ErrPriceUnavailable
	}

	var price decimal.Decimal
	if err := json.Unmarshal(raw, &price); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive price %s", domain.ErrPriceUnavailable, price)
	}
	return price, nil
}
