package portfolio

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
	"github.com/piodois/CryptoVault/internal/models"
	"github.com/piodois/CryptoVault/internal/storage"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// fakeMarket is a canned MarketClient for service tests.
type fakeMarket struct {
	prices map[string]float64
	err    error
}

func (f *fakeMarket) GetPrices(_ context.Context, coinIDs []string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64, len(coinIDs))
	for _, id := range coinIDs {
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeMarket) GetTopCoins(_ context.Context, _ int) ([]*models.CoinMarketData, error) {
	return nil, f.err
}

func (f *fakeMarket) GetCoinMarkets(_ context.Context, _ []string) ([]*models.CoinMarketData, error) {
	return nil, f.err
}

func (f *fakeMarket) GetCoinDetails(_ context.Context, _ string) (*models.CoinDetails, error) {
	return nil, f.err
}

func (f *fakeMarket) GetCoinHistory(_ context.Context, _ string, _ int) (*models.PriceHistory, error) {
	return nil, f.err
}

func (f *fakeMarket) SearchCoins(_ context.Context, _ string) ([]*models.CoinSearchResult, error) {
	return nil, f.err
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

func createTestPortfolio(t *testing.T, svc *Service, userID string) *models.Portfolio {
	t.Helper()
	p, err := svc.CreatePortfolio(context.Background(), interfaces.CreatePortfolioInput{
		Name:   "Main",
		UserID: userID,
	})
	if err != nil {
		t.Fatalf("CreatePortfolio: %v", err)
	}
	return p
}

func TestCreatePortfolio_FirstIsDefault(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()

	first, err := svc.CreatePortfolio(ctx, interfaces.CreatePortfolioInput{Name: "First", UserID: "u1"})
	if err != nil {
		t.Fatalf("CreatePortfolio: %v", err)
	}
	if !first.IsDefault {
		t.Error("first portfolio should be the default")
	}

	second, err := svc.CreatePortfolio(ctx, interfaces.CreatePortfolioInput{Name: "Second", UserID: "u1"})
	if err != nil {
		t.Fatalf("CreatePortfolio: %v", err)
	}
	if second.IsDefault {
		t.Error("second portfolio should not be the default")
	}
}

func TestCreatePortfolio_ValidatesName(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()

	_, err := svc.CreatePortfolio(ctx, interfaces.CreatePortfolioInput{Name: "", UserID: "u1"})
	if !errors.Is(err, common.ErrInvalidOperation) {
		t.Errorf("empty name: err = %v, want ErrInvalidOperation", err)
	}

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.CreatePortfolio(ctx, interfaces.CreatePortfolioInput{Name: string(long), UserID: "u1"})
	if !errors.Is(err, common.ErrInvalidOperation) {
		t.Errorf("101-char name: err = %v, want ErrInvalidOperation", err)
	}
}

func TestAddTransaction_WeightedAverageAcrossBuys(t *testing.T) {
	svc := newTestService(t, &fakeMarket{prices: map[string]float64{"bitcoin": 48000}})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	buy := func(amount, price float64) {
		t.Helper()
		_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
			PortfolioID: p.ID, UserID: "u1",
			CoinID: "bitcoin", Symbol: "BTC",
			Type: models.TransactionBuy, Amount: amount, Price: price,
		})
		if err != nil {
			t.Fatalf("AddTransaction: %v", err)
		}
	}

	buy(0.5, 45000)
	buy(0.5, 47000)

	h, err := svc.storage.Holdings().Find(ctx, p.ID, "bitcoin")
	if err != nil {
		t.Fatalf("Find holding: %v", err)
	}
	if !approxEqual(h.Amount, 1.0, 1e-9) {
		t.Errorf("amount = %v, want 1.0", h.Amount)
	}
	// avg = (0.5*45000 + 0.5*47000) / 1.0 = 46000
	if !approxEqual(h.AveragePrice, 46000, 0.01) {
		t.Errorf("average price = %.2f, want 46000.00", h.AveragePrice)
	}

	priced, err := svc.HoldingsWithValues(ctx, p.ID)
	if err != nil {
		t.Fatalf("HoldingsWithValues: %v", err)
	}
	if len(priced) != 1 {
		t.Fatalf("priced holdings = %d, want 1", len(priced))
	}
	// currentValue = 1.0 * 48000 = 48000, gainLoss = 48000 - 46000 = 2000
	if !approxEqual(priced[0].CurrentValue, 48000, 0.01) {
		t.Errorf("current value = %.2f, want 48000.00", priced[0].CurrentValue)
	}
	if !approxEqual(priced[0].GainLoss, 2000, 0.01) {
		t.Errorf("gain/loss = %.2f, want 2000.00", priced[0].GainLoss)
	}
	// gain% = (48000-46000)/46000*100 = 4.3478...
	if !approxEqual(priced[0].GainLossPercentage, 4.3478, 0.001) {
		t.Errorf("gain%% = %.4f, want 4.3478", priced[0].GainLossPercentage)
	}
}

func TestAddTransaction_SellReducesAmountOnly(t *testing.T) {
	svc := newTestService(t, &fakeMarket{prices: map[string]float64{"bitcoin": 48000}})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "bitcoin", Symbol: "BTC",
		Type: models.TransactionBuy, Amount: 1.0, Price: 46000,
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	_, err = svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "bitcoin", Symbol: "BTC",
		Type: models.TransactionSell, Amount: 0.3, Price: 50000,
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	h, err := svc.storage.Holdings().Find(ctx, p.ID, "bitcoin")
	if err != nil {
		t.Fatalf("Find holding: %v", err)
	}
	if !approxEqual(h.Amount, 0.7, 1e-9) {
		t.Errorf("amount = %v, want 0.7", h.Amount)
	}
	// Sells never move the average price.
	if !approxEqual(h.AveragePrice, 46000, 0.01) {
		t.Errorf("average price = %.2f, want 46000.00", h.AveragePrice)
	}
}

func TestAddTransaction_SellToZeroDeletesHolding(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "ethereum", Symbol: "ETH",
		Type: models.TransactionBuy, Amount: 2.0, Price: 3000,
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	_, err = svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "ethereum", Symbol: "ETH",
		Type: models.TransactionSell, Amount: 2.0, Price: 3500,
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	_, err = svc.storage.Holdings().Find(ctx, p.ID, "ethereum")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("holding after full sell: err = %v, want ErrNotFound", err)
	}
}

func TestAddTransaction_SellWithoutHoldingRejected(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "dogecoin", Symbol: "DOGE",
		Type: models.TransactionSell, Amount: 100, Price: 0.1,
	})
	if !errors.Is(err, common.ErrInvalidOperation) {
		t.Fatalf("sell without holding: err = %v, want ErrInvalidOperation", err)
	}

	// Nothing may have been written to the ledger.
	txs, err := svc.storage.Transactions().ListByPortfolio(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListByPortfolio: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(txs))
	}
}

func TestAddTransaction_Validation(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	cases := []struct {
		name  string
		input interfaces.AddTransactionInput
	}{
		{"unknown type", interfaces.AddTransactionInput{PortfolioID: p.ID, UserID: "u1", CoinID: "bitcoin", Symbol: "BTC", Type: "HODL", Amount: 1, Price: 1}},
		{"zero amount", interfaces.AddTransactionInput{PortfolioID: p.ID, UserID: "u1", CoinID: "bitcoin", Symbol: "BTC", Type: models.TransactionBuy, Amount: 0, Price: 1}},
		{"negative price", interfaces.AddTransactionInput{PortfolioID: p.ID, UserID: "u1", CoinID: "bitcoin", Symbol: "BTC", Type: models.TransactionBuy, Amount: 1, Price: -5}},
		{"negative fee", interfaces.AddTransactionInput{PortfolioID: p.ID, UserID: "u1", CoinID: "bitcoin", Symbol: "BTC", Type: models.TransactionBuy, Amount: 1, Price: 1, Fee: -1}},
		{"missing coin", interfaces.AddTransactionInput{PortfolioID: p.ID, UserID: "u1", Type: models.TransactionBuy, Amount: 1, Price: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddTransaction(ctx, tc.input); !errors.Is(err, common.ErrInvalidOperation) {
				t.Errorf("err = %v, want ErrInvalidOperation", err)
			}
		})
	}
}

func TestAddTransaction_OwnershipEnforced(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "intruder",
		CoinID: "bitcoin", Symbol: "BTC",
		Type: models.TransactionBuy, Amount: 1, Price: 1,
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("foreign user: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTransaction_ReversesBuy(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "bitcoin", Symbol: "BTC",
		Type: models.TransactionBuy, Amount: 1.0, Price: 40000,
	})
	if err != nil {
		t.Fatalf("first buy: %v", err)
	}

	tx, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "bitcoin", Symbol: "BTC",
		Type: models.TransactionBuy, Amount: 1.0, Price: 50000,
	})
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, tx.ID, "u1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	h, err := svc.storage.Holdings().Find(ctx, p.ID, "bitcoin")
	if err != nil {
		t.Fatalf("Find holding: %v", err)
	}
	if !approxEqual(h.Amount, 1.0, 1e-9) {
		t.Errorf("amount = %v, want 1.0", h.Amount)
	}

	if _, err := svc.storage.Transactions().Get(ctx, tx.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("deleted transaction still readable: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTransaction_ReversesSellByRebuying(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "bitcoin", Symbol: "BTC",
		Type: models.TransactionBuy, Amount: 1.0, Price: 46000,
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	sell, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: p.ID, UserID: "u1",
		CoinID: "bitcoin", Symbol: "BTC",
		Type: models.TransactionSell, Amount: 0.4, Price: 46000,
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, sell.ID, "u1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	h, err := svc.storage.Holdings().Find(ctx, p.ID, "bitcoin")
	if err != nil {
		t.Fatalf("Find holding: %v", err)
	}
	// Re-buying at the sell's own price restores the position exactly.
	if !approxEqual(h.Amount, 1.0, 1e-9) {
		t.Errorf("amount = %v, want 1.0", h.Amount)
	}
	if !approxEqual(h.AveragePrice, 46000, 0.01) {
		t.Errorf("average price = %.2f, want 46000.00", h.AveragePrice)
	}
}

func TestDeletePortfolio_DefaultRejected(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	err := svc.DeletePortfolio(ctx, p.ID, "u1")
	if !errors.Is(err, common.ErrInvalidOperation) {
		t.Errorf("deleting default portfolio: err = %v, want ErrInvalidOperation", err)
	}
}

func TestDeletePortfolio_CascadesToLedgerAndHoldings(t *testing.T) {
	svc := newTestService(t, &fakeMarket{})
	ctx := context.Background()
	createTestPortfolio(t, svc, "u1")

	second, err := svc.CreatePortfolio(ctx, interfaces.CreatePortfolioInput{Name: "Trading", UserID: "u1"})
	if err != nil {
		t.Fatalf("CreatePortfolio: %v", err)
	}

	_, err = svc.AddTransaction(ctx, interfaces.AddTransactionInput{
		PortfolioID: second.ID, UserID: "u1",
		CoinID: "solana", Symbol: "SOL",
		Type: models.TransactionBuy, Amount: 10, Price: 150,
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if err := svc.DeletePortfolio(ctx, second.ID, "u1"); err != nil {
		t.Fatalf("DeletePortfolio: %v", err)
	}

	txs, err := svc.storage.Transactions().ListByPortfolio(ctx, second.ID)
	if err != nil {
		t.Fatalf("ListByPortfolio: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("transactions after delete = %d, want 0", len(txs))
	}

	holdings, err := svc.storage.Holdings().ListByPortfolio(ctx, second.ID)
	if err != nil {
		t.Fatalf("ListByPortfolio holdings: %v", err)
	}
	if len(holdings) != 0 {
		t.Errorf("holdings after delete = %d, want 0", len(holdings))
	}
}

func TestGetUserPortfolios_IncludesRecentActivity(t *testing.T) {
	svc := newTestService(t, &fakeMarket{prices: map[string]float64{"bitcoin": 50000}})
	ctx := context.Background()
	p := createTestPortfolio(t, svc, "u1")

	for i := 0; i < 12; i++ {
		_, err := svc.AddTransaction(ctx, interfaces.AddTransactionInput{
			PortfolioID: p.ID, UserID: "u1",
			CoinID: "bitcoin", Symbol: "BTC",
			Type: models.TransactionBuy, Amount: 0.01, Price: 50000,
		})
		if err != nil {
			t.Fatalf("buy %d: %v", i, err)
		}
	}

	overviews, err := svc.GetUserPortfolios(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserPortfolios: %v", err)
	}
	if len(overviews) != 1 {
		t.Fatalf("portfolios = %d, want 1", len(overviews))
	}
	if len(overviews[0].RecentTransactions) != recentTransactionLimit {
		t.Errorf("recent transactions = %d, want %d", len(overviews[0].RecentTransactions), recentTransactionLimit)
	}
	if overviews[0].HoldingsCount != 1 {
		t.Errorf("holdings count = %d, want 1", overviews[0].HoldingsCount)
	}
	// total = 12 * 0.01 * 50000 = 6000
	if !approxEqual(overviews[0].TotalValue, 6000, 0.01) {
		t.Errorf("total value = %.2f, want 6000.00", overviews[0].TotalValue)
	}
}
