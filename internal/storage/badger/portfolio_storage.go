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

type portfolioStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPortfolioStorage creates a new PortfolioStore backed by BadgerHold.
func NewPortfolioStorage(store *Store, logger *common.Logger) *portfolioStorage {
	return &portfolioStorage{store: store, logger: logger}
}

func (s *portfolioStorage) Get(_ context.Context, id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.store.db.Get(id, &portfolio)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NotFoundf("portfolio '%s'", id)
		}
		return nil, fmt.Errorf("failed to get portfolio '%s': %w", id, err)
	}
	return &portfolio, nil
}

func (s *portfolioStorage) GetForUser(ctx context.Context, id, userID string) (*models.Portfolio, error) {
	portfolio, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if portfolio.UserID != userID {
		return nil, common.NotFoundf("portfolio '%s' for user '%s'", id, userID)
	}
	return portfolio, nil
}

func (s *portfolioStorage) ListByUser(_ context.Context, userID string) ([]*models.Portfolio, error) {
	var portfolios []*models.Portfolio
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").SortBy("CreatedAt").Reverse()
	if err := s.store.db.Find(&portfolios, query); err != nil {
		return nil, fmt.Errorf("failed to list portfolios for user '%s': %w", userID, err)
	}
	return portfolios, nil
}

func (s *portfolioStorage) Save(_ context.Context, portfolio *models.Portfolio) error {
	portfolio.UpdatedAt = time.Now()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = portfolio.UpdatedAt
	}

	if err := s.store.db.Upsert(portfolio.ID, portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.logger.Debug().Str("id", portfolio.ID).Str("name", portfolio.Name).Msg("Portfolio saved")
	return nil
}

func (s *portfolioStorage) UpdateTotalValue(ctx context.Context, id string, value float64) error {
	portfolio, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	portfolio.TotalValue = value
	portfolio.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(portfolio.ID, portfolio); err != nil {
		return fmt.Errorf("failed to update portfolio total: %w", err)
	}
	return nil
}

func (s *portfolioStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Portfolio{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete portfolio '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Portfolio deleted")
	return nil
}
