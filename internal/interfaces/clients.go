// Package interfaces defines service contracts for CryptoVault
package interfaces

import (
	"context"

	"github.com/piodois/CryptoVault/internal/models"
)

// MarketClient provides access to the market data provider (CoinGecko).
type MarketClient interface {
	// GetPrices retrieves current USD prices for a set of coin ids in one
	// request. Coins the provider doesn't know are silently absent from the
	// result; callers treat absence as price 0.
	GetPrices(ctx context.Context, coinIDs []string) (map[string]float64, error)

	// GetTopCoins retrieves coins ordered by market cap descending.
	GetTopCoins(ctx context.Context, limit int) ([]*models.CoinMarketData, error)

	// GetCoinMarkets retrieves full market rows for a specific set of coin
	// ids. Unknown ids are absent from the result.
	GetCoinMarkets(ctx context.Context, coinIDs []string) ([]*models.CoinMarketData, error)

	// GetCoinDetails retrieves extended data for a single coin.
	GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error)

	// GetCoinHistory retrieves a coin's price history for the last N days.
	GetCoinHistory(ctx context.Context, coinID string, days int) (*models.PriceHistory, error)

	// SearchCoins searches coins by name or symbol.
	SearchCoins(ctx context.Context, query string) ([]*models.CoinSearchResult, error)

	// GetGlobalData retrieves market-wide aggregates.
	GetGlobalData(ctx context.Context) (*models.GlobalMarketData, error)
}
