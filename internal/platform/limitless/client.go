// Package limitless implements the Limitless Exchange venue client.
package limitless

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

// baseChainID is the chain whose active markets we list (2 = Base).
const baseChainID = 2

// Client is the REST client for the Limitless Exchange API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.VenueClient = (*Client)(nil)

// NewClient creates a new Limitless API client.
//
// baseURL is the API root, e.g. "https://api.limitless.exchange".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "limitless_client")),
	}
}

// Venue identifies this client within the unified model.
func (c *Client) Venue() domain.Venue {
	return domain.VenueLimitless
}

// FetchMarkets returns up to limit active markets as unified Markets.
func (c *Client) FetchMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sortBy", "newest")

	path := fmt.Sprintf("/markets/active/%d?%s", baseChainID, params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("limitless: get markets: %w", err)
	}

	// The endpoint returns either a bare array or a {"data": [...]} envelope.
	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		var envelope struct {
			Data []APIMarket `json:"data"`
		}
		if envErr := json.Unmarshal(body, &envelope); envErr != nil {
			return nil, fmt.Errorf("limitless: decode markets: %w", err)
		}
		apiMarkets = envelope.Data
	}

	now := time.Now().UTC()
	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		m, ok := apiMarkets[i].ToDomainMarket(now)
		if !ok {
			c.logger.Debug("skipping unconvertible market",
				slog.String("id", apiMarkets[i].ID.String()),
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

// FetchMarket returns a single market by ID.
func (c *Client) FetchMarket(ctx context.Context, marketID string) (domain.Market, error) {
	params := url.Values{}
	params.Set("chainId", strconv.Itoa(baseChainID))

	path := fmt.Sprintf("/markets/%s?%s", url.PathEscape(marketID), params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.Market{}, fmt.Errorf("limitless: get market %s: %w", marketID, err)
	}

	var apiMarket APIMarket
	if err := json.Unmarshal(body, &apiMarket); err != nil {
		return domain.Market{}, fmt.Errorf("limitless: decode market: %w", err)
	}

	m, ok := apiMarket.ToDomainMarket(time.Now().UTC())
	if !ok {
		return domain.Market{}, fmt.Errorf("limitless: market %s is not convertible", marketID)
	}
	return m, nil
}

// doGet performs a GET against the Limitless API and returns the raw body.
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
