// Package interfaces defines service contracts for CryptoVault
package interfaces

import (
	"context"

	"github.com/piodois/CryptoVault/internal/models"
)

// CreatePortfolioInput holds parameters for portfolio creation.
type CreatePortfolioInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
}

// AddTransactionInput holds parameters for recording a buy or sell.
type AddTransactionInput struct {
	PortfolioID string                 `json:"portfolio_id"`
	UserID      string                 `json:"user_id"`
	CoinID      string                 `json:"coin_id"`
	Symbol      string                 `json:"symbol"`
	Type        models.TransactionType `json:"type"`
	Amount      float64                `json:"amount"`
	Price       float64                `json:"price"`
	Fee         float64                `json:"fee"`
	Notes       string                 `json:"notes"`
}

// PortfolioService manages portfolios, the transaction ledger, derived
// holdings, valuation and analytics.
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, input CreatePortfolioInput) (*models.Portfolio, error)

	// GetUserPortfolios returns the user's portfolios with recomputed totals
	// and their 10 most recent transactions.
	GetUserPortfolios(ctx context.Context, userID string) ([]*models.PortfolioOverview, error)

	// GetPortfolio returns the full read model: priced holdings, transaction
	// history (newest first) and current value.
	GetPortfolio(ctx context.Context, portfolioID, userID string) (*models.PortfolioDetail, error)

	// DeletePortfolio removes a non-default portfolio and its holdings and
	// transactions.
	DeletePortfolio(ctx context.Context, portfolioID, userID string) error

	// AddTransaction appends a ledger entry, applies its holding delta and
	// recomputes the cached portfolio value.
	AddTransaction(ctx context.Context, input AddTransactionInput) (*models.Transaction, error)

	// DeleteTransaction reverses a ledger entry's accounting effect and
	// removes it.
	DeleteTransaction(ctx context.Context, transactionID, userID string) error

	// HoldingsWithValues prices all holdings of a portfolio. Missing prices
	// degrade to zero; this never fails on provider errors.
	HoldingsWithValues(ctx context.Context, portfolioID string) ([]*models.PricedHolding, error)

	// RecomputeValue refreshes every holding's cached value and the portfolio
	// total, returning the total.
	RecomputeValue(ctx context.Context, portfolioID string) (float64, error)

	// Analytics derives portfolio-level metrics from holdings and the ledger.
	Analytics(ctx context.Context, portfolioID string) (*models.PortfolioAnalytics, error)
}

// CreateWatchlistInput holds parameters for watchlist creation.
type CreateWatchlistInput struct {
	Name    string   `json:"name"`
	CoinIDs []string `json:"coin_ids"`
	UserID  string   `json:"user_id"`
}

// UpdateWatchlistInput holds parameters for a watchlist update; zero-valued
// fields are left unchanged.
type UpdateWatchlistInput struct {
	WatchlistID string   `json:"watchlist_id"`
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	CoinIDs     []string `json:"coin_ids"`
}

// WatchlistService manages watchlists.
type WatchlistService interface {
	CreateWatchlist(ctx context.Context, input CreateWatchlistInput) (*models.Watchlist, error)
	GetUserWatchlists(ctx context.Context, userID string) ([]*models.Watchlist, error)
	GetWatchlist(ctx context.Context, watchlistID, userID string) (*models.Watchlist, error)
	UpdateWatchlist(ctx context.Context, input UpdateWatchlistInput) (*models.Watchlist, error)
	DeleteWatchlist(ctx context.Context, watchlistID, userID string) error

	// AddCoin appends a coin; duplicates are rejected.
	AddCoin(ctx context.Context, watchlistID, coinID, userID string) (*models.Watchlist, error)

	// RemoveCoin drops a coin; absence is rejected.
	RemoveCoin(ctx context.Context, watchlistID, coinID, userID string) (*models.Watchlist, error)

	// GetWatchlistCoins enriches the watchlist with live market data,
	// degrading to an empty coin list when the provider is unavailable.
	GetWatchlistCoins(ctx context.Context, watchlistID, userID string) (*models.WatchlistCoins, error)
}

// CreateAlertInput holds parameters for alert creation.
type CreateAlertInput struct {
	UserID      string                `json:"user_id"`
	CoinID      string                `json:"coin_id"`
	Symbol      string                `json:"symbol"`
	Condition   models.AlertCondition `json:"condition"`
	TargetPrice float64               `json:"target_price"`
}

// AlertUpdate holds mutable alert fields; nil pointers are left unchanged.
// Setting IsActive true also clears the triggered state (external reset).
type AlertUpdate struct {
	TargetPrice *float64 `json:"target_price"`
	IsActive    *bool    `json:"is_active"`
}

// AlertService manages price alerts and their batch evaluation.
type AlertService interface {
	CreateAlert(ctx context.Context, input CreateAlertInput) (*models.Alert, error)
	GetUserAlerts(ctx context.Context, userID string) ([]*models.Alert, error)
	UpdateAlert(ctx context.Context, alertID, userID string, update AlertUpdate) (*models.Alert, error)
	DeleteAlert(ctx context.Context, alertID, userID string) error

	// CheckAlerts evaluates all active, untriggered alerts against current
	// prices and returns the ones that fired. Coins with no current price are
	// skipped, never errored.
	CheckAlerts(ctx context.Context) ([]*models.TriggeredAlert, error)
}

// MarketService handles market data reads with store-backed caching.
type MarketService interface {
	// GetTopCoins returns coins by market cap. Live rows refresh the cache;
	// on provider failure the cache is served with IsLiveData=false.
	GetTopCoins(ctx context.Context, limit int) (*models.TopCoins, error)

	// RefreshCache pulls current top coins into the store cache.
	RefreshCache(ctx context.Context) error

	GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error)
	GetCoinHistory(ctx context.Context, coinID string, days int) (*models.PriceHistory, error)
	SearchCoins(ctx context.Context, query string) ([]*models.CoinSearchResult, error)
	GetGlobalData(ctx context.Context) (*models.GlobalMarketData, error)
}
