package portfolio

import (
	"context"
	"fmt"

	"github.com/piodois/CryptoVault/internal/models"
)

// currentPrices fetches USD prices for the given holdings in one bulk call.
// Valuation is availability-biased: any provider failure degrades to an empty
// map (every price reads as zero) instead of propagating.
func (s *Service) currentPrices(ctx context.Context, holdings []*models.Holding) map[string]float64 {
	if len(holdings) == 0 {
		return map[string]float64{}
	}

	coinIDs := make([]string, 0, len(holdings))
	seen := make(map[string]bool, len(holdings))
	for _, h := range holdings {
		if !seen[h.CoinID] {
			seen[h.CoinID] = true
			coinIDs = append(coinIDs, h.CoinID)
		}
	}

	prices, err := s.market.GetPrices(ctx, coinIDs)
	if err != nil {
		s.logger.Warn().Err(err).Int("coins", len(coinIDs)).Msg("Price lookup failed, valuing at zero")
		return map[string]float64{}
	}
	return prices
}

// HoldingsWithValues prices every holding of the portfolio. A coin with no
// current price values at zero; this never fails on provider errors.
func (s *Service) HoldingsWithValues(ctx context.Context, portfolioID string) ([]*models.PricedHolding, error) {
	holdings, err := s.storage.Holdings().ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	if len(holdings) == 0 {
		return []*models.PricedHolding{}, nil
	}

	prices := s.currentPrices(ctx, holdings)

	priced := make([]*models.PricedHolding, len(holdings))
	for i, h := range holdings {
		currentPrice := prices[h.CoinID]
		currentValue := h.Amount * currentPrice
		gainLoss := currentValue - h.Amount*h.AveragePrice

		gainLossPct := 0.0
		if h.AveragePrice > 0 {
			gainLossPct = (currentPrice - h.AveragePrice) / h.AveragePrice * 100
		}

		priced[i] = &models.PricedHolding{
			Holding:            *h,
			CurrentPrice:       currentPrice,
			CurrentValue:       currentValue,
			GainLoss:           gainLoss,
			GainLossPercentage: gainLossPct,
		}
	}

	return priced, nil
}

// RecomputeValue reprices all holdings, persists each holding's cached value
// and the portfolio total, and returns the total. This is the convergence
// point after every ledger mutation. The per-holding writes plus the final
// portfolio write are not atomic; cached totals may be transiently stale.
func (s *Service) RecomputeValue(ctx context.Context, portfolioID string) (float64, error) {
	holdings, err := s.storage.Holdings().ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return 0, fmt.Errorf("failed to list holdings: %w", err)
	}

	if len(holdings) == 0 {
		if err := s.storage.Portfolios().UpdateTotalValue(ctx, portfolioID, 0); err != nil {
			return 0, err
		}
		return 0, nil
	}

	prices := s.currentPrices(ctx, holdings)

	totalValue := 0.0
	for _, h := range holdings {
		holdingValue := h.Amount * prices[h.CoinID]
		totalValue += holdingValue

		h.TotalValue = holdingValue
		if err := s.storage.Holdings().Upsert(ctx, h); err != nil {
			return 0, err
		}
	}

	if err := s.storage.Portfolios().UpdateTotalValue(ctx, portfolioID, totalValue); err != nil {
		return 0, err
	}

	return totalValue, nil
}
