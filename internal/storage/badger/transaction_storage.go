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

type transactionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewTransactionStorage creates a new TransactionStore backed by BadgerHold.
func NewTransactionStorage(store *Store, logger *common.Logger) *transactionStorage {
	return &transactionStorage{store: store, logger: logger}
}

func (s *transactionStorage) Create(_ context.Context, tx *models.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	if err := s.store.db.Insert(tx.ID, tx); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	s.logger.Debug().
		Str("id", tx.ID).
		Str("portfolio", tx.PortfolioID).
		Str("type", string(tx.Type)).
		Msg("Transaction created")
	return nil
}

func (s *transactionStorage) Get(_ context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.store.db.Get(id, &tx)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NotFoundf("transaction '%s'", id)
		}
		return nil, fmt.Errorf("failed to get transaction '%s': %w", id, err)
	}
	return &tx, nil
}

func (s *transactionStorage) ListByPortfolio(_ context.Context, portfolioID string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID").SortBy("CreatedAt").Reverse()
	if err := s.store.db.Find(&txs, query); err != nil {
		return nil, fmt.Errorf("failed to list transactions for portfolio '%s': %w", portfolioID, err)
	}
	return txs, nil
}

func (s *transactionStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Transaction{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete transaction '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Transaction deleted")
	return nil
}

func (s *transactionStorage) DeleteByPortfolio(_ context.Context, portfolioID string) (int, error) {
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID")
	count, err := s.store.db.Count(models.Transaction{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for portfolio '%s': %w", portfolioID, err)
	}
	if err := s.store.db.DeleteMatching(models.Transaction{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete transactions for portfolio '%s': %w", portfolioID, err)
	}
	return int(count), nil
}
