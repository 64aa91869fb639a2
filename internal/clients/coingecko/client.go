// Package coingecko provides a client for the CoinGecko API
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/models"
)

const (
	DefaultBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second; the public API allows ~30/min

	// MaxPriceBatch limits how many coin ids go into one simple/price call.
	MaxPriceBatch = 50
)

// Client implements the MarketClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new CoinGecko client. apiKey may be empty for the
// public API tier.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("CoinGecko API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Unwrap classifies every API failure as an upstream availability problem so
// callers can degrade with errors.Is(err, common.ErrUpstreamUnavailable).
func (e *APIError) Unwrap() error {
	return common.ErrUpstreamUnavailable
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("CoinGecko API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", common.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// chunkIDs splits coin ids into batches of at most MaxPriceBatch, keeping
// each request inside the public tier's URL length limits.
func chunkIDs(coinIDs []string) [][]string {
	var chunks [][]string
	for len(coinIDs) > MaxPriceBatch {
		chunks = append(chunks, coinIDs[:MaxPriceBatch])
		coinIDs = coinIDs[MaxPriceBatch:]
	}
	return append(chunks, coinIDs)
}

// GetPrices retrieves current USD prices for a set of coin ids, batching
// large sets across requests. Coins the provider doesn't know are absent from
// the result map.
func (c *Client) GetPrices(ctx context.Context, coinIDs []string) (map[string]float64, error) {
	if len(coinIDs) == 0 {
		return map[string]float64{}, nil
	}

	prices := make(map[string]float64, len(coinIDs))
	for _, batch := range chunkIDs(coinIDs) {
		params := url.Values{}
		params.Set("ids", strings.Join(batch, ","))
		params.Set("vs_currencies", "usd")

		var resp map[string]struct {
			USD float64 `json:"usd"`
		}
		if err := c.get(ctx, "/simple/price", params, &resp); err != nil {
			return nil, err
		}

		for coinID, entry := range resp {
			prices[coinID] = entry.USD
		}
	}
	return prices, nil
}

// marketRow is one row of the coins/markets response.
type marketRow struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank"`
	TotalVolume              float64  `json:"total_volume"`
	High24h                  float64  `json:"high_24h"`
	Low24h                   float64  `json:"low_24h"`
	PriceChange24h           float64  `json:"price_change_24h"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"`
	LastUpdated              string   `json:"last_updated"`
}

func (r *marketRow) toModel() *models.CoinMarketData {
	updated, err := time.Parse(time.RFC3339, r.LastUpdated)
	if err != nil {
		updated = time.Now().UTC()
	}
	return &models.CoinMarketData{
		CoinID:                   r.ID,
		Symbol:                   r.Symbol,
		Name:                     r.Name,
		Image:                    r.Image,
		CurrentPrice:             r.CurrentPrice,
		MarketCap:                r.MarketCap,
		MarketCapRank:            r.MarketCapRank,
		Volume24h:                r.TotalVolume,
		High24h:                  r.High24h,
		Low24h:                   r.Low24h,
		PriceChange24h:           r.PriceChange24h,
		PriceChangePercentage24h: r.PriceChangePercentage24h,
		CirculatingSupply:        r.CirculatingSupply,
		TotalSupply:              r.TotalSupply,
		MaxSupply:                r.MaxSupply,
		LastUpdated:              updated,
	}
}

// GetTopCoins retrieves coins ordered by market cap descending.
func (c *Client) GetTopCoins(ctx context.Context, limit int) ([]*models.CoinMarketData, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprintf("%d", limit))
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	var rows []marketRow
	if err := c.get(ctx, "/coins/markets", params, &rows); err != nil {
		return nil, err
	}

	coins := make([]*models.CoinMarketData, len(rows))
	for i := range rows {
		coins[i] = rows[i].toModel()
	}
	return coins, nil
}

// GetCoinMarkets retrieves full market rows for a specific set of coin ids,
// batching large sets across requests.
func (c *Client) GetCoinMarkets(ctx context.Context, coinIDs []string) ([]*models.CoinMarketData, error) {
	if len(coinIDs) == 0 {
		return []*models.CoinMarketData{}, nil
	}

	coins := make([]*models.CoinMarketData, 0, len(coinIDs))
	for _, batch := range chunkIDs(coinIDs) {
		params := url.Values{}
		params.Set("vs_currency", "usd")
		params.Set("ids", strings.Join(batch, ","))
		params.Set("order", "market_cap_desc")
		params.Set("per_page", fmt.Sprintf("%d", len(batch)))
		params.Set("page", "1")
		params.Set("sparkline", "false")
		params.Set("price_change_percentage", "24h")

		var rows []marketRow
		if err := c.get(ctx, "/coins/markets", params, &rows); err != nil {
			return nil, err
		}
		for i := range rows {
			coins = append(coins, rows[i].toModel())
		}
	}
	return coins, nil
}

// coinDetailsResponse maps the subset of coins/{id} we consume.
type coinDetailsResponse struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		EN string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	MarketCapRank int `json:"market_cap_rank"`
	MarketData    struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		PriceChange24h           float64            `json:"price_change_24h"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
		PriceChangePercentage7d  float64            `json:"price_change_percentage_7d"`
		PriceChangePercentage30d float64            `json:"price_change_percentage_30d"`
		PriceChangePercentage1y  float64            `json:"price_change_percentage_1y"`
		CirculatingSupply        float64            `json:"circulating_supply"`
		TotalSupply              *float64           `json:"total_supply"`
		MaxSupply                *float64           `json:"max_supply"`
	} `json:"market_data"`
}

// GetCoinDetails retrieves extended data for a single coin.
func (c *Client) GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	params.Set("sparkline", "false")

	var resp coinDetailsResponse
	if err := c.get(ctx, fmt.Sprintf("/coins/%s", url.PathEscape(coinID)), params, &resp); err != nil {
		return nil, err
	}

	details := &models.CoinDetails{
		CoinMarketData: models.CoinMarketData{
			CoinID:                   resp.ID,
			Symbol:                   resp.Symbol,
			Name:                     resp.Name,
			Image:                    resp.Image.Large,
			CurrentPrice:             resp.MarketData.CurrentPrice["usd"],
			MarketCap:                resp.MarketData.MarketCap["usd"],
			MarketCapRank:            resp.MarketCapRank,
			Volume24h:                resp.MarketData.TotalVolume["usd"],
			High24h:                  resp.MarketData.High24h["usd"],
			Low24h:                   resp.MarketData.Low24h["usd"],
			PriceChange24h:           resp.MarketData.PriceChange24h,
			PriceChangePercentage24h: resp.MarketData.PriceChangePercentage24h,
			CirculatingSupply:        resp.MarketData.CirculatingSupply,
			TotalSupply:              resp.MarketData.TotalSupply,
			MaxSupply:                resp.MarketData.MaxSupply,
			LastUpdated:              time.Now().UTC(),
		},
		Description:              resp.Description.EN,
		PriceChangePercentage7d:  resp.MarketData.PriceChangePercentage7d,
		PriceChangePercentage30d: resp.MarketData.PriceChangePercentage30d,
		PriceChangePercentage1y:  resp.MarketData.PriceChangePercentage1y,
	}
	if len(resp.Links.Homepage) > 0 {
		details.Homepage = resp.Links.Homepage[0]
	}
	return details, nil
}

// chartResponse maps coins/{id}/market_chart: arrays of [ms-timestamp, value].
type chartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func toPricePoints(pairs [][2]float64) []models.PricePoint {
	points := make([]models.PricePoint, len(pairs))
	for i, p := range pairs {
		points[i] = models.PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Value:     p[1],
		}
	}
	return points
}

// GetCoinHistory retrieves a coin's price history for the last N days.
// Single-day requests sample hourly; longer ranges sample daily.
func (c *Client) GetCoinHistory(ctx context.Context, coinID string, days int) (*models.PriceHistory, error) {
	if days <= 0 {
		days = 7
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", fmt.Sprintf("%d", days))
	if days <= 1 {
		params.Set("interval", "hourly")
	} else {
		params.Set("interval", "daily")
	}

	var resp chartResponse
	if err := c.get(ctx, fmt.Sprintf("/coins/%s/market_chart", url.PathEscape(coinID)), params, &resp); err != nil {
		return nil, err
	}

	return &models.PriceHistory{
		CoinID:     coinID,
		Prices:     toPricePoints(resp.Prices),
		MarketCaps: toPricePoints(resp.MarketCaps),
		Volumes:    toPricePoints(resp.TotalVolumes),
	}, nil
}

// SearchCoins searches coins by name or symbol.
func (c *Client) SearchCoins(ctx context.Context, query string) ([]*models.CoinSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp struct {
		Coins []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
			Thumb         string `json:"thumb"`
		} `json:"coins"`
	}
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	results := make([]*models.CoinSearchResult, len(resp.Coins))
	for i, coin := range resp.Coins {
		results[i] = &models.CoinSearchResult{
			CoinID:        coin.ID,
			Name:          coin.Name,
			Symbol:        coin.Symbol,
			MarketCapRank: coin.MarketCapRank,
			Thumb:         coin.Thumb,
		}
	}
	return results, nil
}

// GetGlobalData retrieves market-wide aggregates.
func (c *Client) GetGlobalData(ctx context.Context) (*models.GlobalMarketData, error) {
	var resp struct {
		Data struct {
			ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
			TotalMarketCap         map[string]float64 `json:"total_market_cap"`
			TotalVolume            map[string]float64 `json:"total_volume"`
			MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/global", nil, &resp); err != nil {
		return nil, err
	}

	return &models.GlobalMarketData{
		ActiveCryptocurrencies: resp.Data.ActiveCryptocurrencies,
		TotalMarketCapUSD:      resp.Data.TotalMarketCap["usd"],
		TotalVolumeUSD:         resp.Data.TotalVolume["usd"],
		BTCDominance:           resp.Data.MarketCapPercentage["btc"],
		ETHDominance:           resp.Data.MarketCapPercentage["eth"],
	}, nil
}
