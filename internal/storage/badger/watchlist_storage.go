package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type watchlistStorage struct {
	store  *Store
	logger *common.Logger
}

// NewWatchlistStorage creates a new WatchlistStore backed by BadgerHold.
func NewWatchlistStorage(store *Store, logger *common.Logger) *watchlistStorage {
	return &watchlistStorage{store: store, logger: logger}
}

func (s *watchlistStorage) GetForUser(_ context.Context, id, userID string) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	err := s.store.db.Get(id, &watchlist)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NotFoundf("watchlist '%s'", id)
		}
		return nil, fmt.Errorf("failed to get watchlist '%s': %w", id, err)
	}
	if watchlist.UserID != userID {
		return nil, common.NotFoundf("watchlist '%s' for user '%s'", id, userID)
	}
	return &watchlist, nil
}

func (s *watchlistStorage) ListByUser(_ context.Context, userID string) ([]*models.Watchlist, error) {
	var watchlists []*models.Watchlist
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").SortBy("CreatedAt").Reverse()
	if err := s.store.db.Find(&watchlists, query); err != nil {
		return nil, fmt.Errorf("failed to list watchlists for user '%s': %w", userID, err)
	}
	return watchlists, nil
}

func (s *watchlistStorage) Save(_ context.Context, watchlist *models.Watchlist) error {
	watchlist.UpdatedAt = time.Now()
	if watchlist.CreatedAt.IsZero() {
		watchlist.CreatedAt = watchlist.UpdatedAt
	}

	if err := s.store.db.Upsert(watchlist.ID, watchlist); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	s.logger.Debug().Str("id", watchlist.ID).Int("coins", len(watchlist.CoinIDs)).Msg("Watchlist saved")
	return nil
}

func (s *watchlistStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Watchlist{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete watchlist '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Watchlist deleted")
	return nil
}
