// Package models defines data structures for CryptoVault
package models

import "time"

// TransactionType is the ledger entry direction
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell
}

// Portfolio represents a user's crypto portfolio.
// TotalValue is a cached denormalization recomputed after every ledger
// mutation; it is never authoritative.
type Portfolio struct {
	ID          string    `json:"id" badgerhold:"key"`
	UserID      string    `json:"user_id" badgerhold:"index"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	TotalValue  float64   `json:"total_value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Transaction is an immutable ledger entry. Transactions are the source of
// truth; holdings are a derived projection.
type Transaction struct {
	ID          string          `json:"id" badgerhold:"key"`
	PortfolioID string          `json:"portfolio_id" badgerhold:"index"`
	CoinID      string          `json:"coin_id"`
	Symbol      string          `json:"symbol"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Price       float64         `json:"price"`
	TotalValue  float64         `json:"total_value"` // amount * price at execution
	Fee         float64         `json:"fee"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Holding is the running position for one (portfolio, coin) pair.
// AveragePrice is a quantity-weighted mean across BUY events only; sells
// reduce Amount but never touch AveragePrice. A holding whose amount reaches
// zero is deleted, not retained.
type Holding struct {
	ID           string    `json:"id" badgerhold:"key"`
	PortfolioID  string    `json:"portfolio_id" badgerhold:"index"`
	CoinID       string    `json:"coin_id"`
	Symbol       string    `json:"symbol"`
	Amount       float64   `json:"amount"`
	AveragePrice float64   `json:"average_price"`
	TotalValue   float64   `json:"total_value"` // cached: amount * last-seen price
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PricedHolding is a holding augmented with live valuation fields.
type PricedHolding struct {
	Holding
	CurrentPrice       float64 `json:"current_price"`
	CurrentValue       float64 `json:"current_value"`
	GainLoss           float64 `json:"gain_loss"`
	GainLossPercentage float64 `json:"gain_loss_percentage"`
}

// PortfolioOverview is a portfolio with its recent activity, returned by the
// user portfolio listing.
type PortfolioOverview struct {
	Portfolio
	HoldingsCount      int            `json:"holdings_count"`
	RecentTransactions []*Transaction `json:"recent_transactions"`
}

// PortfolioDetail is the full read model for a single portfolio.
type PortfolioDetail struct {
	Portfolio
	CurrentValue float64          `json:"current_value"`
	Holdings     []*PricedHolding `json:"holdings"`
	Transactions []*Transaction   `json:"transactions"`
}

// Performer identifies the best or worst holding by gain/loss percentage.
type Performer struct {
	Symbol         string  `json:"symbol"`
	GainPercentage float64 `json:"gain_percentage"`
}

// PortfolioAnalytics holds derived portfolio-level metrics.
// TotalInvested carries the net figure (gross buys incl. fees minus sell
// proceeds net of fees) and is the denominator for ReturnPercentage.
type PortfolioAnalytics struct {
	CurrentValue         float64    `json:"current_value"`
	TotalInvested        float64    `json:"total_invested"`
	TotalReturn          float64    `json:"total_return"`
	ReturnPercentage     float64    `json:"return_percentage"`
	HoldingsCount        int        `json:"holdings_count"`
	TransactionsCount    int        `json:"transactions_count"`
	TopPerformer         *Performer `json:"top_performer"`
	WorstPerformer       *Performer `json:"worst_performer"`
	TotalGains           float64    `json:"total_gains"`
	TotalLosses          float64    `json:"total_losses"`
	DiversificationScore float64    `json:"diversification_score"`
	AverageHoldingPeriod int        `json:"average_holding_period"` // days
}
