// Package interfaces defines service contracts for CryptoVault
package interfaces

import (
	"context"

	"github.com/piodois/CryptoVault/internal/models"
)

// StorageManager coordinates all storage backends.
type StorageManager interface {
	Portfolios() PortfolioStore
	Transactions() TransactionStore
	Holdings() HoldingStore
	Watchlists() WatchlistStore
	Alerts() AlertStore
	MarketData() MarketDataStore

	Close() error
}

// PortfolioStore persists portfolios. Lookups scoped by owner return
// common.ErrNotFound when the id exists but belongs to another user.
type PortfolioStore interface {
	Get(ctx context.Context, id string) (*models.Portfolio, error)
	GetForUser(ctx context.Context, id, userID string) (*models.Portfolio, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error)
	Save(ctx context.Context, portfolio *models.Portfolio) error
	UpdateTotalValue(ctx context.Context, id string, value float64) error
	Delete(ctx context.Context, id string) error
}

// TransactionStore persists the append-only transaction ledger.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	Get(ctx context.Context, id string) (*models.Transaction, error)
	// ListByPortfolio returns transactions ordered by creation time descending.
	ListByPortfolio(ctx context.Context, portfolioID string) ([]*models.Transaction, error)
	Delete(ctx context.Context, id string) error
	DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error)
}

// HoldingStore persists derived holdings, keyed by (portfolioID, coinID).
type HoldingStore interface {
	// Find returns common.ErrNotFound (wrapped) when no holding exists.
	Find(ctx context.Context, portfolioID, coinID string) (*models.Holding, error)
	Upsert(ctx context.Context, holding *models.Holding) error
	ListByPortfolio(ctx context.Context, portfolioID string) ([]*models.Holding, error)
	Delete(ctx context.Context, id string) error
	DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error)
}

// WatchlistStore persists watchlists.
type WatchlistStore interface {
	GetForUser(ctx context.Context, id, userID string) (*models.Watchlist, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Watchlist, error)
	Save(ctx context.Context, watchlist *models.Watchlist) error
	Delete(ctx context.Context, id string) error
}

// AlertStore persists price alerts.
type AlertStore interface {
	GetForUser(ctx context.Context, id, userID string) (*models.Alert, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Alert, error)
	// ListActiveUntriggered returns alerts eligible for evaluation.
	ListActiveUntriggered(ctx context.Context) ([]*models.Alert, error)
	Save(ctx context.Context, alert *models.Alert) error
	Delete(ctx context.Context, id string) error
}

// MarketDataStore caches per-coin market rows.
type MarketDataStore interface {
	Get(ctx context.Context, coinID string) (*models.CoinMarketData, error)
	Upsert(ctx context.Context, data *models.CoinMarketData) error
	List(ctx context.Context) ([]*models.CoinMarketData, error)
}
