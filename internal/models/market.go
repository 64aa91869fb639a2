package models

import "time"

// CoinMarketData is one coin's market row as returned by the provider and
// cached in the store.
type CoinMarketData struct {
	CoinID                   string    `json:"id" badgerhold:"key"`
	Symbol                   string    `json:"symbol"`
	Name                     string    `json:"name"`
	Image                    string    `json:"image,omitempty"`
	CurrentPrice             float64   `json:"current_price"`
	MarketCap                float64   `json:"market_cap"`
	MarketCapRank            int       `json:"market_cap_rank"`
	Volume24h                float64   `json:"total_volume"`
	High24h                  float64   `json:"high_24h"`
	Low24h                   float64   `json:"low_24h"`
	PriceChange24h           float64   `json:"price_change_24h"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	CirculatingSupply        float64   `json:"circulating_supply"`
	TotalSupply              *float64  `json:"total_supply"`
	MaxSupply                *float64  `json:"max_supply"`
	LastUpdated              time.Time `json:"last_updated"`
}

// CoinDetails extends market data with descriptive fields.
type CoinDetails struct {
	CoinMarketData
	Description              string  `json:"description,omitempty"`
	Homepage                 string  `json:"homepage,omitempty"`
	PriceChangePercentage7d  float64 `json:"price_change_percentage_7d"`
	PriceChangePercentage30d float64 `json:"price_change_percentage_30d"`
	PriceChangePercentage1y  float64 `json:"price_change_percentage_1y"`
}

// PricePoint is one (timestamp, value) sample from a coin's history.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// PriceHistory holds a coin's sampled price/market-cap/volume series.
type PriceHistory struct {
	CoinID     string       `json:"coin_id"`
	Prices     []PricePoint `json:"prices"`
	MarketCaps []PricePoint `json:"market_caps"`
	Volumes    []PricePoint `json:"total_volumes"`
}

// CoinSearchResult is one hit from a coin name/symbol search.
type CoinSearchResult struct {
	CoinID        string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb,omitempty"`
}

// GlobalMarketData summarizes the overall crypto market.
type GlobalMarketData struct {
	ActiveCryptocurrencies int     `json:"active_cryptocurrencies"`
	TotalMarketCapUSD      float64 `json:"total_market_cap_usd"`
	TotalVolumeUSD         float64 `json:"total_volume_usd"`
	BTCDominance           float64 `json:"btc_dominance"`
	ETHDominance           float64 `json:"eth_dominance"`
}

// TopCoins is the result of a top-coins request; IsLiveData is false when the
// rows came from the store cache instead of the provider.
type TopCoins struct {
	Coins      []*CoinMarketData `json:"coins"`
	IsLiveData bool              `json:"is_live_data"`
}
