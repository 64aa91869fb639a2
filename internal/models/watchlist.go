package models

import "time"

// MaxWatchlistCoins caps the number of coins a watchlist can track.
const MaxWatchlistCoins = 50

// Watchlist is an ordered list of unique coin identifiers owned by a user.
type Watchlist struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	Name      string    `json:"name"`
	CoinIDs   []string  `json:"coin_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether coinID is already tracked.
func (w *Watchlist) Contains(coinID string) bool {
	for _, id := range w.CoinIDs {
		if id == coinID {
			return true
		}
	}
	return false
}

// WatchlistCoins pairs a watchlist with live market data for its coins.
// Coins may be empty when the market data provider is unavailable.
type WatchlistCoins struct {
	Watchlist *Watchlist        `json:"watchlist"`
	Coins     []*CoinMarketData `json:"coins"`
}
