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

type holdingStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHoldingStorage creates a new HoldingStore backed by BadgerHold.
func NewHoldingStorage(store *Store, logger *common.Logger) *holdingStorage {
	return &holdingStorage{store: store, logger: logger}
}

func (s *holdingStorage) Find(_ context.Context, portfolioID, coinID string) (*models.Holding, error) {
	var holdings []*models.Holding
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID").
		And("CoinID").Eq(coinID).Limit(1)
	if err := s.store.db.Find(&holdings, query); err != nil {
		return nil, fmt.Errorf("failed to find holding (%s, %s): %w", portfolioID, coinID, err)
	}
	if len(holdings) == 0 {
		return nil, common.NotFoundf("holding (%s, %s)", portfolioID, coinID)
	}
	return holdings[0], nil
}

func (s *holdingStorage) Upsert(_ context.Context, holding *models.Holding) error {
	holding.UpdatedAt = time.Now()
	if holding.CreatedAt.IsZero() {
		holding.CreatedAt = holding.UpdatedAt
	}

	if err := s.store.db.Upsert(holding.ID, holding); err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	s.logger.Debug().
		Str("portfolio", holding.PortfolioID).
		Str("coin", holding.CoinID).
		Float64("amount", holding.Amount).
		Msg("Holding saved")
	return nil
}

func (s *holdingStorage) ListByPortfolio(_ context.Context, portfolioID string) ([]*models.Holding, error) {
	var holdings []*models.Holding
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID").SortBy("CreatedAt")
	if err := s.store.db.Find(&holdings, query); err != nil {
		return nil, fmt.Errorf("failed to list holdings for portfolio '%s': %w", portfolioID, err)
	}
	return holdings, nil
}

func (s *holdingStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Holding{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete holding '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Holding deleted")
	return nil
}

func (s *holdingStorage) DeleteByPortfolio(_ context.Context, portfolioID string) (int, error) {
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID")
	count, err := s.store.db.Count(models.Holding{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count holdings for portfolio '%s': %w", portfolioID, err)
	}
	if err := s.store.db.DeleteMatching(models.Holding{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete holdings for portfolio '%s': %w", portfolioID, err)
	}
	return int(count), nil
}
