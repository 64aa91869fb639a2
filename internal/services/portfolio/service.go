// Package portfolio implements the portfolio accounting engine: the
// transaction ledger, derived weighted-average-cost holdings, valuation and
// analytics.
package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
	"github.com/piodois/CryptoVault/internal/models"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// recentTransactionLimit caps the transactions attached to each portfolio in
// the user listing.
const recentTransactionLimit = 10

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketClient
	logger  *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, market interfaces.MarketClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// CreatePortfolio creates a portfolio for a user. The user's first portfolio
// becomes the default; a default portfolio cannot be deleted.
func (s *Service) CreatePortfolio(ctx context.Context, input interfaces.CreatePortfolioInput) (*models.Portfolio, error) {
	if input.Name == "" || len(input.Name) > 100 {
		return nil, common.InvalidOperationf("portfolio name must be 1-100 characters")
	}
	if input.UserID == "" {
		return nil, common.InvalidOperationf("user id is required")
	}

	existing, err := s.storage.Portfolios().ListByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	portfolio := &models.Portfolio{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
		IsDefault:   len(existing) == 0,
	}

	if err := s.storage.Portfolios().Save(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().
		Str("id", portfolio.ID).
		Str("user", portfolio.UserID).
		Bool("default", portfolio.IsDefault).
		Msg("Portfolio created")

	return portfolio, nil
}

// GetUserPortfolios returns the user's portfolios with recomputed totals and
// recent activity, newest portfolio first.
func (s *Service) GetUserPortfolios(ctx context.Context, userID string) ([]*models.PortfolioOverview, error) {
	portfolios, err := s.storage.Portfolios().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	overviews := make([]*models.PortfolioOverview, 0, len(portfolios))
	for _, p := range portfolios {
		total, err := s.RecomputeValue(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.TotalValue = total

		holdings, err := s.storage.Holdings().ListByPortfolio(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		txs, err := s.storage.Transactions().ListByPortfolio(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(txs) > recentTransactionLimit {
			txs = txs[:recentTransactionLimit]
		}

		overviews = append(overviews, &models.PortfolioOverview{
			Portfolio:          *p,
			HoldingsCount:      len(holdings),
			RecentTransactions: txs,
		})
	}

	return overviews, nil
}

// GetPortfolio returns the full portfolio read model.
func (s *Service) GetPortfolio(ctx context.Context, portfolioID, userID string) (*models.PortfolioDetail, error) {
	portfolio, err := s.storage.Portfolios().GetForUser(ctx, portfolioID, userID)
	if err != nil {
		return nil, err
	}

	currentValue, err := s.RecomputeValue(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	portfolio.TotalValue = currentValue

	holdings, err := s.HoldingsWithValues(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	txs, err := s.storage.Transactions().ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	return &models.PortfolioDetail{
		Portfolio:    *portfolio,
		CurrentValue: currentValue,
		Holdings:     holdings,
		Transactions: txs,
	}, nil
}

// DeletePortfolio removes a non-default portfolio together with its holdings
// and transactions.
func (s *Service) DeletePortfolio(ctx context.Context, portfolioID, userID string) error {
	portfolio, err := s.storage.Portfolios().GetForUser(ctx, portfolioID, userID)
	if err != nil {
		return err
	}

	if portfolio.IsDefault {
		return common.InvalidOperationf("cannot delete the default portfolio")
	}

	if _, err := s.storage.Transactions().DeleteByPortfolio(ctx, portfolioID); err != nil {
		return err
	}
	if _, err := s.storage.Holdings().DeleteByPortfolio(ctx, portfolioID); err != nil {
		return err
	}
	if err := s.storage.Portfolios().Delete(ctx, portfolioID); err != nil {
		return err
	}

	s.logger.Info().Str("id", portfolioID).Msg("Portfolio deleted")
	return nil
}

// AddTransaction appends a ledger entry and applies its holding delta, then
// recomputes the cached portfolio value. Sells against a coin the portfolio
// doesn't hold are rejected before anything is written.
func (s *Service) AddTransaction(ctx context.Context, input interfaces.AddTransactionInput) (*models.Transaction, error) {
	if !input.Type.Valid() {
		return nil, common.InvalidOperationf("unknown transaction type '%s'", input.Type)
	}
	if input.Amount <= 0 {
		return nil, common.InvalidOperationf("amount must be positive")
	}
	if input.Price <= 0 {
		return nil, common.InvalidOperationf("price must be positive")
	}
	if input.Fee < 0 {
		return nil, common.InvalidOperationf("fee cannot be negative")
	}
	if input.CoinID == "" || input.Symbol == "" {
		return nil, common.InvalidOperationf("coin id and symbol are required")
	}

	if _, err := s.storage.Portfolios().GetForUser(ctx, input.PortfolioID, input.UserID); err != nil {
		return nil, err
	}

	// Keep the ledger entry and its holding delta consistent: verify the
	// position exists before persisting a SELL.
	if input.Type == models.TransactionSell {
		if _, err := s.storage.Holdings().Find(ctx, input.PortfolioID, input.CoinID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.InvalidOperationf("cannot sell '%s': no holding in portfolio", input.CoinID)
			}
			return nil, err
		}
	}

	tx := &models.Transaction{
		ID:          uuid.New().String(),
		PortfolioID: input.PortfolioID,
		CoinID:      input.CoinID,
		Symbol:      input.Symbol,
		Type:        input.Type,
		Amount:      input.Amount,
		Price:       input.Price,
		TotalValue:  input.Amount * input.Price,
		Fee:         input.Fee,
		Notes:       input.Notes,
	}

	if err := s.storage.Transactions().Create(ctx, tx); err != nil {
		return nil, err
	}

	var err error
	if tx.Type == models.TransactionBuy {
		err = s.applyBuy(ctx, tx.PortfolioID, tx.CoinID, tx.Symbol, tx.Amount, tx.Price)
	} else {
		err = s.applyReduce(ctx, tx.PortfolioID, tx.CoinID, tx.Amount)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.RecomputeValue(ctx, tx.PortfolioID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("portfolio", tx.PortfolioID).
		Str("coin", tx.CoinID).
		Str("type", string(tx.Type)).
		Float64("amount", tx.Amount).
		Msg("Transaction added")

	return tx, nil
}

// DeleteTransaction reverses a ledger entry's accounting effect and removes
// it. Reversal is exact only when no later transactions touched the holding;
// the weighted-average model is not invertible in general.
func (s *Service) DeleteTransaction(ctx context.Context, transactionID, userID string) error {
	tx, err := s.storage.Transactions().Get(ctx, transactionID)
	if err != nil {
		return err
	}

	if _, err := s.storage.Portfolios().GetForUser(ctx, tx.PortfolioID, userID); err != nil {
		return err
	}

	// A BUY is undone by reducing; a SELL by re-buying at the original price.
	if tx.Type == models.TransactionBuy {
		err = s.applyReduce(ctx, tx.PortfolioID, tx.CoinID, tx.Amount)
	} else {
		err = s.applyBuy(ctx, tx.PortfolioID, tx.CoinID, tx.Symbol, tx.Amount, tx.Price)
	}
	if err != nil {
		return err
	}

	if err := s.storage.Transactions().Delete(ctx, transactionID); err != nil {
		return err
	}

	if _, err := s.RecomputeValue(ctx, tx.PortfolioID); err != nil {
		return err
	}

	s.logger.Info().Str("id", transactionID).Str("portfolio", tx.PortfolioID).Msg("Transaction deleted")
	return nil
}

// applyBuy folds a purchase into the holding for (portfolioID, coinID),
// creating it if absent. The average price is the quantity-weighted mean
// across all buys; sells never change it.
func (s *Service) applyBuy(ctx context.Context, portfolioID, coinID, symbol string, amount, price float64) error {
	existing, err := s.storage.Holdings().Find(ctx, portfolioID, coinID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		holding := &models.Holding{
			ID:           uuid.New().String(),
			PortfolioID:  portfolioID,
			CoinID:       coinID,
			Symbol:       symbol,
			Amount:       amount,
			AveragePrice: price,
			TotalValue:   amount * price,
		}
		return s.storage.Holdings().Upsert(ctx, holding)
	}

	newAmount := existing.Amount + amount
	newAveragePrice := (existing.Amount*existing.AveragePrice + amount*price) / newAmount

	existing.Amount = newAmount
	existing.AveragePrice = newAveragePrice
	return s.storage.Holdings().Upsert(ctx, existing)
}

// applyReduce subtracts amount from the holding. Reducing to zero or below
// deletes the holding outright; no negative-quantity position is retained.
func (s *Service) applyReduce(ctx context.Context, portfolioID, coinID string, amount float64) error {
	holding, err := s.storage.Holdings().Find(ctx, portfolioID, coinID)
	if err != nil {
		return err
	}

	newAmount := holding.Amount - amount
	if newAmount <= 0 {
		return s.storage.Holdings().Delete(ctx, holding.ID)
	}

	holding.Amount = newAmount
	return s.storage.Holdings().Upsert(ctx, holding)
}
