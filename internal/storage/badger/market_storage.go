package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type marketStorage struct {
	store  *Store
	logger *common.Logger
}

// NewMarketStorage creates a new MarketDataStore backed by BadgerHold.
func NewMarketStorage(store *Store, logger *common.Logger) *marketStorage {
	return &marketStorage{store: store, logger: logger}
}

func (s *marketStorage) Get(_ context.Context, coinID string) (*models.CoinMarketData, error) {
	var data models.CoinMarketData
	err := s.store.db.Get(coinID, &data)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NotFoundf("market data for '%s'", coinID)
		}
		return nil, fmt.Errorf("failed to get market data for '%s': %w", coinID, err)
	}
	return &data, nil
}

func (s *marketStorage) Upsert(_ context.Context, data *models.CoinMarketData) error {
	if data.LastUpdated.IsZero() {
		data.LastUpdated = time.Now().UTC()
	}
	if err := s.store.db.Upsert(data.CoinID, data); err != nil {
		return fmt.Errorf("failed to save market data: %w", err)
	}
	return nil
}

func (s *marketStorage) List(_ context.Context) ([]*models.CoinMarketData, error) {
	var rows []*models.CoinMarketData
	if err := s.store.db.Find(&rows, nil); err != nil {
		return nil, fmt.Errorf("failed to list market data: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].MarketCapRank < rows[j].MarketCapRank
	})
	return rows, nil
}
