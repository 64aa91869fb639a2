package portfolio

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/piodois/CryptoVault/internal/models"
)

// Analytics derives portfolio-level metrics from the priced holdings and the
// full transaction ledger.
func (s *Service) Analytics(ctx context.Context, portfolioID string) (*models.PortfolioAnalytics, error) {
	holdings, err := s.HoldingsWithValues(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	txs, err := s.storage.Transactions().ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	currentValue := 0.0
	for _, h := range holdings {
		currentValue += h.CurrentValue
	}

	// Net invested: buys cost their gross value plus fees, sells return their
	// gross value minus fees. A heavily profit-taking portfolio can go
	// negative here.
	netInvested := 0.0
	for _, tx := range txs {
		if tx.Type == models.TransactionBuy {
			netInvested += tx.TotalValue + tx.Fee
		} else {
			netInvested -= tx.TotalValue - tx.Fee
		}
	}

	totalReturn := currentValue - netInvested
	returnPct := 0.0
	if netInvested > 0 {
		returnPct = totalReturn / netInvested * 100
	}

	var top, worst *models.Performer
	totalGains := 0.0
	totalLosses := 0.0
	for _, h := range holdings {
		if h.GainLoss >= 0 {
			totalGains += h.GainLoss
		} else {
			totalLosses += math.Abs(h.GainLoss)
		}

		// Strict comparisons keep the first-seen holding on ties.
		if top == nil || h.GainLossPercentage > top.GainPercentage {
			top = &models.Performer{Symbol: strings.ToUpper(h.Symbol), GainPercentage: h.GainLossPercentage}
		}
		if worst == nil || h.GainLossPercentage < worst.GainPercentage {
			worst = &models.Performer{Symbol: strings.ToUpper(h.Symbol), GainPercentage: h.GainLossPercentage}
		}
	}

	return &models.PortfolioAnalytics{
		CurrentValue:         currentValue,
		TotalInvested:        netInvested,
		TotalReturn:          totalReturn,
		ReturnPercentage:     returnPct,
		HoldingsCount:        len(holdings),
		TransactionsCount:    len(txs),
		TopPerformer:         top,
		WorstPerformer:       worst,
		TotalGains:           totalGains,
		TotalLosses:          totalLosses,
		DiversificationScore: diversificationScore(holdings, currentValue),
		AverageHoldingPeriod: averageHoldingPeriod(txs, time.Now()),
	}, nil
}

// diversificationScore maps value concentration onto 0-100 via the
// Herfindahl-Hirschman index. No holdings scores 0; a single holding scores a
// flat 20 even when its value is unknown; multiple holdings with no value
// score 0.
func diversificationScore(holdings []*models.PricedHolding, totalValue float64) float64 {
	if len(holdings) == 0 {
		return 0
	}
	if len(holdings) == 1 {
		return 20
	}
	if totalValue <= 0 {
		return 0
	}

	hhi := 0.0
	for _, h := range holdings {
		share := h.CurrentValue / totalValue
		hhi += share * share
	}

	// HHI ranges from 1/n (even spread) to 1 (full concentration); invert and
	// rescale so an even spread over many holdings approaches 100.
	n := float64(len(holdings))
	score := (1 - hhi) / (1 - 1/n) * 100
	return math.Max(0, math.Min(100, score))
}

// averageHoldingPeriod is the mean age in days of the portfolio's BUY
// transactions. Each buy's age is floored to whole days before averaging, so
// a position bought earlier today contributes 0. Sells do not count toward
// the period.
func averageHoldingPeriod(txs []*models.Transaction, now time.Time) int {
	totalDays := 0.0
	buys := 0
	for _, tx := range txs {
		if tx.Type != models.TransactionBuy {
			continue
		}
		totalDays += math.Floor(now.Sub(tx.CreatedAt).Hours() / 24)
		buys++
	}
	if buys == 0 {
		return 0
	}
	return int(totalDays / float64(buys))
}
