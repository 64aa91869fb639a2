// Package market implements market data reads with a store-backed cache.
package market

import (
	"context"
	"errors"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
	"github.com/piodois/CryptoVault/internal/models"
)

// Compile-time interface check
var _ interfaces.MarketService = (*Service)(nil)

// cachedTopCoins caps how many live rows get written back to the cache per
// refresh.
const cachedTopCoins = 10

// maxSearchResults caps the hits returned per search query.
const maxSearchResults = 10

// Service implements MarketService
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketClient
	logger  *common.Logger
}

// NewService creates a new market service
func NewService(storage interfaces.StorageManager, market interfaces.MarketClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// GetTopCoins returns coins ordered by market cap. Live rows refresh the
// cache; when the provider is down the cache is served with IsLiveData=false.
func (s *Service) GetTopCoins(ctx context.Context, limit int) (*models.TopCoins, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	coins, err := s.market.GetTopCoins(ctx, limit)
	if err == nil {
		n := cachedTopCoins
		if len(coins) < n {
			n = len(coins)
		}
		for _, coin := range coins[:n] {
			if cacheErr := s.storage.MarketData().Upsert(ctx, coin); cacheErr != nil {
				s.logger.Warn().Err(cacheErr).Str("coin", coin.CoinID).Msg("Failed to cache market row")
			}
		}
		return &models.TopCoins{Coins: coins, IsLiveData: true}, nil
	}

	if !errors.Is(err, common.ErrUpstreamUnavailable) {
		return nil, err
	}

	s.logger.Warn().Err(err).Msg("Provider unavailable, serving cached market data")

	cached, cacheErr := s.storage.MarketData().List(ctx)
	if cacheErr != nil {
		return nil, cacheErr
	}
	if len(cached) > limit {
		cached = cached[:limit]
	}
	return &models.TopCoins{Coins: cached, IsLiveData: false}, nil
}

// RefreshCache pulls the current top coins into the store cache. Used by the
// scheduler so cached fallbacks stay reasonably fresh.
func (s *Service) RefreshCache(ctx context.Context) error {
	coins, err := s.market.GetTopCoins(ctx, cachedTopCoins)
	if err != nil {
		return err
	}
	for _, coin := range coins {
		if err := s.storage.MarketData().Upsert(ctx, coin); err != nil {
			return err
		}
	}
	s.logger.Debug().Int("coins", len(coins)).Msg("Market cache refreshed")
	return nil
}

// GetCoinDetails retrieves extended data for a single coin.
func (s *Service) GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error) {
	if coinID == "" {
		return nil, common.InvalidOperationf("coin id is required")
	}
	return s.market.GetCoinDetails(ctx, coinID)
}

// GetCoinHistory retrieves a coin's price history over 1 to 365 days.
func (s *Service) GetCoinHistory(ctx context.Context, coinID string, days int) (*models.PriceHistory, error) {
	if coinID == "" {
		return nil, common.InvalidOperationf("coin id is required")
	}
	if days < 1 || days > 365 {
		return nil, common.InvalidOperationf("days must be between 1 and 365")
	}
	return s.market.GetCoinHistory(ctx, coinID, days)
}

// SearchCoins searches coins by name or symbol.
func (s *Service) SearchCoins(ctx context.Context, query string) ([]*models.CoinSearchResult, error) {
	if query == "" {
		return nil, common.InvalidOperationf("search query is required")
	}
	results, err := s.market.SearchCoins(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results, nil
}

// GetGlobalData retrieves market-wide aggregates.
func (s *Service) GetGlobalData(ctx context.Context) (*models.GlobalMarketData, error) {
	return s.market.GetGlobalData(ctx)
}
