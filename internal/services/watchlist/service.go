// Package watchlist implements watchlist management and market enrichment.
package watchlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
	"github.com/piodois/CryptoVault/internal/models"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketClient
	logger  *common.Logger
}

// NewService creates a new watchlist service
func NewService(storage interfaces.StorageManager, market interfaces.MarketClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

func validateCoinIDs(coinIDs []string) error {
	if len(coinIDs) == 0 {
		return common.InvalidOperationf("watchlist must track at least one coin")
	}
	if len(coinIDs) > models.MaxWatchlistCoins {
		return common.InvalidOperationf("watchlist cannot track more than %d coins", models.MaxWatchlistCoins)
	}
	seen := make(map[string]bool, len(coinIDs))
	for _, id := range coinIDs {
		if id == "" {
			return common.InvalidOperationf("coin id cannot be empty")
		}
		if seen[id] {
			return common.InvalidOperationf("duplicate coin '%s' in watchlist", id)
		}
		seen[id] = true
	}
	return nil
}

// CreateWatchlist creates a watchlist tracking 1 to MaxWatchlistCoins unique
// coins.
func (s *Service) CreateWatchlist(ctx context.Context, input interfaces.CreateWatchlistInput) (*models.Watchlist, error) {
	if input.Name == "" || len(input.Name) > 100 {
		return nil, common.InvalidOperationf("watchlist name must be 1-100 characters")
	}
	if input.UserID == "" {
		return nil, common.InvalidOperationf("user id is required")
	}
	if err := validateCoinIDs(input.CoinIDs); err != nil {
		return nil, err
	}

	watchlist := &models.Watchlist{
		ID:      uuid.New().String(),
		UserID:  input.UserID,
		Name:    input.Name,
		CoinIDs: input.CoinIDs,
	}

	if err := s.storage.Watchlists().Save(ctx, watchlist); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", watchlist.ID).
		Str("user", watchlist.UserID).
		Int("coins", len(watchlist.CoinIDs)).
		Msg("Watchlist created")

	return watchlist, nil
}

// GetUserWatchlists returns the user's watchlists, newest first.
func (s *Service) GetUserWatchlists(ctx context.Context, userID string) ([]*models.Watchlist, error) {
	return s.storage.Watchlists().ListByUser(ctx, userID)
}

// GetWatchlist returns a single watchlist owned by the user.
func (s *Service) GetWatchlist(ctx context.Context, watchlistID, userID string) (*models.Watchlist, error) {
	return s.storage.Watchlists().GetForUser(ctx, watchlistID, userID)
}

// UpdateWatchlist applies a partial update; zero-valued fields are kept.
func (s *Service) UpdateWatchlist(ctx context.Context, input interfaces.UpdateWatchlistInput) (*models.Watchlist, error) {
	watchlist, err := s.storage.Watchlists().GetForUser(ctx, input.WatchlistID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		if len(input.Name) > 100 {
			return nil, common.InvalidOperationf("watchlist name must be 1-100 characters")
		}
		watchlist.Name = input.Name
	}
	if input.CoinIDs != nil {
		if err := validateCoinIDs(input.CoinIDs); err != nil {
			return nil, err
		}
		watchlist.CoinIDs = input.CoinIDs
	}

	if err := s.storage.Watchlists().Save(ctx, watchlist); err != nil {
		return nil, err
	}
	return watchlist, nil
}

// DeleteWatchlist removes the user's watchlist.
func (s *Service) DeleteWatchlist(ctx context.Context, watchlistID, userID string) error {
	if _, err := s.storage.Watchlists().GetForUser(ctx, watchlistID, userID); err != nil {
		return err
	}
	return s.storage.Watchlists().Delete(ctx, watchlistID)
}

// AddCoin appends a coin to the watchlist. Duplicates and overflow past the
// coin cap are rejected.
func (s *Service) AddCoin(ctx context.Context, watchlistID, coinID, userID string) (*models.Watchlist, error) {
	if coinID == "" {
		return nil, common.InvalidOperationf("coin id is required")
	}

	watchlist, err := s.storage.Watchlists().GetForUser(ctx, watchlistID, userID)
	if err != nil {
		return nil, err
	}

	if watchlist.Contains(coinID) {
		return nil, common.InvalidOperationf("coin '%s' is already in watchlist", coinID)
	}
	if len(watchlist.CoinIDs) >= models.MaxWatchlistCoins {
		return nil, common.InvalidOperationf("watchlist cannot track more than %d coins", models.MaxWatchlistCoins)
	}

	watchlist.CoinIDs = append(watchlist.CoinIDs, coinID)
	if err := s.storage.Watchlists().Save(ctx, watchlist); err != nil {
		return nil, err
	}
	return watchlist, nil
}

// RemoveCoin drops a coin from the watchlist. Removing an untracked coin is
// rejected.
func (s *Service) RemoveCoin(ctx context.Context, watchlistID, coinID, userID string) (*models.Watchlist, error) {
	watchlist, err := s.storage.Watchlists().GetForUser(ctx, watchlistID, userID)
	if err != nil {
		return nil, err
	}

	if !watchlist.Contains(coinID) {
		return nil, common.InvalidOperationf("coin '%s' is not in watchlist", coinID)
	}

	kept := make([]string, 0, len(watchlist.CoinIDs)-1)
	for _, id := range watchlist.CoinIDs {
		if id != coinID {
			kept = append(kept, id)
		}
	}
	watchlist.CoinIDs = kept

	if err := s.storage.Watchlists().Save(ctx, watchlist); err != nil {
		return nil, err
	}
	return watchlist, nil
}

// GetWatchlistCoins enriches the watchlist with live market rows, preserving
// the watchlist's coin order. Provider failures degrade to an empty coin list.
func (s *Service) GetWatchlistCoins(ctx context.Context, watchlistID, userID string) (*models.WatchlistCoins, error) {
	watchlist, err := s.storage.Watchlists().GetForUser(ctx, watchlistID, userID)
	if err != nil {
		return nil, err
	}

	result := &models.WatchlistCoins{
		Watchlist: watchlist,
		Coins:     []*models.CoinMarketData{},
	}
	if len(watchlist.CoinIDs) == 0 {
		return result, nil
	}

	rows, err := s.market.GetCoinMarkets(ctx, watchlist.CoinIDs)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", watchlistID).Msg("Market lookup failed, returning watchlist without coins")
		return result, nil
	}

	byID := make(map[string]*models.CoinMarketData, len(rows))
	for _, row := range rows {
		byID[row.CoinID] = row
	}
	for _, coinID := range watchlist.CoinIDs {
		if row, ok := byID[coinID]; ok {
			result.Coins = append(result.Coins, row)
		}
	}

	return result, nil
}
