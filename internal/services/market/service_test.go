package market

import (
	"context"
	"errors"
	"testing"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/models"
	"github.com/piodois/CryptoVault/internal/storage"
)

// fakeMarket is a canned MarketClient for market service tests.
type fakeMarket struct {
	rows   []*models.CoinMarketData
	search []*models.CoinSearchResult
	err    error
}

func (f *fakeMarket) GetPrices(_ context.Context, _ []string) (map[string]float64, error) {
	return nil, f.err
}

func (f *fakeMarket) GetTopCoins(_ context.Context, limit int) ([]*models.CoinMarketData, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.rows) {
		limit = len(f.rows)
	}
	return f.rows[:limit], nil
}

func (f *fakeMarket) GetCoinMarkets(_ context.Context, _ []string) ([]*models.CoinMarketData, error) {
	return f.rows, f.err
}

func (f *fakeMarket) GetCoinDetails(_ context.Context, coinID string) (*models.CoinDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CoinDetails{CoinMarketData: models.CoinMarketData{CoinID: coinID}}, nil
}

func (f *fakeMarket) GetCoinHistory(_ context.Context, coinID string, _ int) (*models.PriceHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PriceHistory{CoinID: coinID}, nil
}

func (f *fakeMarket) SearchCoins(_ context.Context, _ string) ([]*models.CoinSearchResult, error) {
	return f.search, f.err
}

func (f *fakeMarket) GetGlobalData(_ context.Context) (*models.GlobalMarketData, error) {
	return nil, f.err
}

func newTestService(t *testing.T, market *fakeMarket) *Service {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Path = t.TempDir()

	manager, err := storage.NewManager(common.NewSilentLogger(), config)
	if err != nil {
		t.Fatalf("failed to create storage manager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	return NewService(manager, market, common.NewSilentLogger())
}

func marketRows(n int) []*models.CoinMarketData {
	rows := make([]*models.CoinMarketData, n)
	for i := range rows {
		rows[i] = &models.CoinMarketData{
			CoinID:        string(rune('a' + i)),
			MarketCapRank: i + 1,
			CurrentPrice:  float64((i + 1) * 100),
		}
	}
	return rows
}

func TestGetTopCoins_LiveRefreshesCache(t *testing.T) {
	market := &fakeMarket{rows: marketRows(15)}
	svc := newTestService(t, market)
	ctx := context.Background()

	top, err := svc.GetTopCoins(ctx, 15)
	if err != nil {
		t.Fatalf("GetTopCoins: %v", err)
	}
	if !top.IsLiveData {
		t.Error("live rows must report IsLiveData=true")
	}
	if len(top.Coins) != 15 {
		t.Errorf("coins = %d, want 15", len(top.Coins))
	}

	cached, err := svc.storage.MarketData().List(ctx)
	if err != nil {
		t.Fatalf("List cache: %v", err)
	}
	if len(cached) != cachedTopCoins {
		t.Errorf("cached rows = %d, want %d", len(cached), cachedTopCoins)
	}
}

func TestGetTopCoins_ProviderFailureServesCache(t *testing.T) {
	market := &fakeMarket{rows: marketRows(5)}
	svc := newTestService(t, market)
	ctx := context.Background()

	// Warm the cache, then kill the provider.
	if _, err := svc.GetTopCoins(ctx, 5); err != nil {
		t.Fatalf("warm-up GetTopCoins: %v", err)
	}
	market.err = common.ErrUpstreamUnavailable

	top, err := svc.GetTopCoins(ctx, 5)
	if err != nil {
		t.Fatalf("GetTopCoins with provider down: %v", err)
	}
	if top.IsLiveData {
		t.Error("cached fallback must report IsLiveData=false")
	}
	if len(top.Coins) != 5 {
		t.Errorf("coins = %d, want 5", len(top.Coins))
	}
	// Cache serves rank order.
	if top.Coins[0].MarketCapRank != 1 {
		t.Errorf("first cached rank = %d, want 1", top.Coins[0].MarketCapRank)
	}
}

func TestGetTopCoins_ColdCacheFallbackIsEmpty(t *testing.T) {
	svc := newTestService(t, &fakeMarket{err: common.ErrUpstreamUnavailable})

	top, err := svc.GetTopCoins(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetTopCoins: %v", err)
	}
	if top.IsLiveData {
		t.Error("fallback must report IsLiveData=false")
	}
	if len(top.Coins) != 0 {
		t.Errorf("coins = %d, want 0", len(top.Coins))
	}
}

func TestGetCoinHistory_BoundsValidated(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()

	if _, err := svc.GetCoinHistory(ctx, "bitcoin", 0); !errors.Is(err, common.ErrInvalidOperation) {
		t.Errorf("days=0: err = %v, want ErrInvalidOperation", err)
	}
	if _, err := svc.GetCoinHistory(ctx, "bitcoin", 366); !errors.Is(err, common.ErrInvalidOperation) {
		t.Errorf("days=366: err = %v, want ErrInvalidOperation", err)
	}
	if _, err := svc.GetCoinHistory(ctx, "", 7); !errors.Is(err, common.ErrInvalidOperation) {
		t.Errorf("empty coin: err = %v, want ErrInvalidOperation", err)
	}
	if _, err := svc.GetCoinHistory(ctx, "bitcoin", 365); err != nil {
		t.Errorf("days=365: err = %v, want nil", err)
	}
}

func TestSearchCoins_EmptyQueryRejected(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})

	if _, err := svc.SearchCoins(context.Background(), ""); !errors.Is(err, common.ErrInvalidOperation) {
		t.Errorf("empty query: err = %v, want ErrInvalidOperation", err)
	}
}

func TestSearchCoins_CapsResults(t *testing.T) {
	hits := make([]*models.CoinSearchResult, 25)
	for i := range hits {
		hits[i] = &models.CoinSearchResult{CoinID: string(rune('a' + i))}
	}
	svc := newTestService(t, &fakeMarket{search: hits})

	results, err := svc.SearchCoins(context.Background(), "coin")
	if err != nil {
		t.Fatalf("SearchCoins: %v", err)
	}
	if len(results) != maxSearchResults {
		t.Errorf("results = %d, want %d", len(results), maxSearchResults)
	}
}

func TestRefreshCache(t *testing.T) {
	market := &fakeMarket{rows: marketRows(12)}
	svc := newTestService(t, market)
	ctx := context.Background()

	if err := svc.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}

	cached, err := svc.storage.MarketData().List(ctx)
	if err != nil {
		t.Fatalf("List cache: %v", err)
	}
	if len(cached) != cachedTopCoins {
		t.Errorf("cached rows = %d, want %d", len(cached), cachedTopCoins)
	}
}
