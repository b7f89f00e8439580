// Package polymarket implements the Polymarket venue client on top of the
// Gamma REST API.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

// Client is the REST client for the Polymarket Gamma API, which provides
// market discovery, metadata, and current outcome prices.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.VenueClient = (*Client)(nil)

// NewClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "polymarket_client")),
	}
}

// Venue identifies this client within the unified model.
func (c *Client) Venue() domain.Venue {
	return domain.VenuePolymarket
}

// FetchMarkets returns up to limit open markets as unified Markets. Markets
// the API returns in a shape we cannot convert are logged and skipped, never
// fatal for the batch.
func (c *Client) FetchMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("archived", "false")

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("polymarket: decode markets: %w", err)
	}

	now := time.Now().UTC()
	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		m, ok := apiMarkets[i].ToDomainMarket(now)
		if !ok {
			c.logger.Debug("skipping unconvertible market",
				slog.String("id", apiMarkets[i].ID),
			)
			continue
		}
		markets = append(markets, m)
	}

	c.logger.Info("fetched markets",
		slog.Int("raw", len(apiMarkets)),
		slog.Int("converted", len(markets)),
	)

	return markets, nil
}

// FetchMarket returns a single market looked up by its condition ID.
func (c *Client) FetchMarket(ctx context.Context, conditionID string) (domain.Market, error) {
	params := url.Values{}
	params.Set("condition_ids", conditionID)

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return domain.Market{}, fmt.Errorf("polymarket: get market %s: %w", conditionID, err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return domain.Market{}, fmt.Errorf("polymarket: decode market: %w", err)
	}
	if len(apiMarkets) == 0 {
		return domain.Market{}, fmt.Errorf("polymarket: %w: condition_id=%s", domain.ErrNotFound, conditionID)
	}

	m, ok := apiMarkets[0].ToDomainMarket(time.Now().UTC())
	if !ok {
		return domain.Market{}, fmt.Errorf("polymarket: market %s is not convertible", conditionID)
	}
	return m, nil
}

// doGet performs a GET against the Gamma API and returns the raw body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
