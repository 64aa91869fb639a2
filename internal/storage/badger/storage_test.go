package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPortfolioStorage_CRUD(t *testing.T) {
	store := newTestStore(t)
	storage := NewPortfolioStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	p := &models.Portfolio{ID: "p1", UserID: "u1", Name: "Main", IsDefault: true}
	if err := storage.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("Save must stamp timestamps")
	}

	got, err := storage.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Main" || !got.IsDefault {
		t.Errorf("got = %+v, want Main/default", got)
	}

	if _, err := storage.Get(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Get missing: err = %v, want ErrNotFound", err)
	}

	// Owner scoping hides other users' portfolios.
	if _, err := storage.GetForUser(ctx, "p1", "intruder"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetForUser foreign: err = %v, want ErrNotFound", err)
	}

	if err := storage.UpdateTotalValue(ctx, "p1", 1234.56); err != nil {
		t.Fatalf("UpdateTotalValue: %v", err)
	}
	got, err = storage.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.TotalValue != 1234.56 {
		t.Errorf("total = %v, want 1234.56", got.TotalValue)
	}

	if err := storage.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := storage.Get(ctx, "p1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	// Deleting again is not an error.
	if err := storage.Delete(ctx, "p1"); err != nil {
		t.Errorf("repeat Delete: %v", err)
	}
}

func TestPortfolioStorage_ListByUserNewestFirst(t *testing.T) {
	store := newTestStore(t)
	storage := NewPortfolioStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	older := &models.Portfolio{ID: "p1", UserID: "u1", Name: "Old"}
	older.CreatedAt = time.Now().Add(-time.Hour)
	older.UpdatedAt = older.CreatedAt
	if err := storage.Save(ctx, older); err != nil {
		t.Fatalf("Save older: %v", err)
	}

	newer := &models.Portfolio{ID: "p2", UserID: "u1", Name: "New"}
	if err := storage.Save(ctx, newer); err != nil {
		t.Fatalf("Save newer: %v", err)
	}

	other := &models.Portfolio{ID: "p3", UserID: "u2", Name: "Foreign"}
	if err := storage.Save(ctx, other); err != nil {
		t.Fatalf("Save other: %v", err)
	}

	list, err := storage.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d, want 2", len(list))
	}
	if list[0].ID != "p2" || list[1].ID != "p1" {
		t.Errorf("order = [%s %s], want [p2 p1]", list[0].ID, list[1].ID)
	}
}

func TestHoldingStorage_FindAndDeleteByPortfolio(t *testing.T) {
	store := newTestStore(t)
	storage := NewHoldingStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	holdings := []*models.Holding{
		{ID: "h1", PortfolioID: "p1", CoinID: "bitcoin", Symbol: "BTC", Amount: 1, AveragePrice: 40000},
		{ID: "h2", PortfolioID: "p1", CoinID: "ethereum", Symbol: "ETH", Amount: 2, AveragePrice: 3000},
		{ID: "h3", PortfolioID: "p2", CoinID: "bitcoin", Symbol: "BTC", Amount: 5, AveragePrice: 35000},
	}
	for _, h := range holdings {
		if err := storage.Upsert(ctx, h); err != nil {
			t.Fatalf("Upsert %s: %v", h.ID, err)
		}
	}

	got, err := storage.Find(ctx, "p1", "bitcoin")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ID != "h1" {
		t.Errorf("found %s, want h1", got.ID)
	}

	if _, err := storage.Find(ctx, "p1", "dogecoin"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Find absent: err = %v, want ErrNotFound", err)
	}

	deleted, err := storage.DeleteByPortfolio(ctx, "p1")
	if err != nil {
		t.Fatalf("DeleteByPortfolio: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	// The other portfolio's holding survives.
	if _, err := storage.Find(ctx, "p2", "bitcoin"); err != nil {
		t.Errorf("p2 holding lost: %v", err)
	}
}

func TestTransactionStorage_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	storage := NewTransactionStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"t1", "t2", "t3"} {
		tx := &models.Transaction{
			ID:          id,
			PortfolioID: "p1",
			CoinID:      "bitcoin",
			Symbol:      "BTC",
			Type:        models.TransactionBuy,
			Amount:      1,
			Price:       100,
			TotalValue:  100,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.Create(ctx, tx); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	list, err := storage.ListByPortfolio(ctx, "p1")
	if err != nil {
		t.Fatalf("ListByPortfolio: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list = %d, want 3", len(list))
	}
	if list[0].ID != "t3" || list[2].ID != "t1" {
		t.Errorf("order = [%s %s %s], want [t3 t2 t1]", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestAlertStorage_ListActiveUntriggered(t *testing.T) {
	store := newTestStore(t)
	storage := NewAlertStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	now := time.Now()
	alerts := []*models.Alert{
		{ID: "a1", UserID: "u1", CoinID: "bitcoin", Condition: models.AlertAbove, TargetPrice: 1, IsActive: true, IsTriggered: false},
		{ID: "a2", UserID: "u1", CoinID: "bitcoin", Condition: models.AlertAbove, TargetPrice: 1, IsActive: false, IsTriggered: false},
		{ID: "a3", UserID: "u1", CoinID: "bitcoin", Condition: models.AlertAbove, TargetPrice: 1, IsActive: true, IsTriggered: true, TriggeredAt: &now},
	}
	for _, a := range alerts {
		if err := storage.Save(ctx, a); err != nil {
			t.Fatalf("Save %s: %v", a.ID, err)
		}
	}

	pending, err := storage.ListActiveUntriggered(ctx)
	if err != nil {
		t.Fatalf("ListActiveUntriggered: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "a1" {
		t.Errorf("pending = %v, want [a1]", pending)
	}
}

func TestMarketStorage_ListOrderedByRank(t *testing.T) {
	store := newTestStore(t)
	storage := NewMarketStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	rows := []*models.CoinMarketData{
		{CoinID: "ethereum", MarketCapRank: 2},
		{CoinID: "bitcoin", MarketCapRank: 1},
		{CoinID: "solana", MarketCapRank: 5},
	}
	for _, row := range rows {
		if err := storage.Upsert(ctx, row); err != nil {
			t.Fatalf("Upsert %s: %v", row.CoinID, err)
		}
	}

	list, err := storage.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list = %d, want 3", len(list))
	}
	if list[0].CoinID != "bitcoin" || list[2].CoinID != "solana" {
		t.Errorf("order = [%s %s %s], want [bitcoin ethereum solana]", list[0].CoinID, list[1].CoinID, list[2].CoinID)
	}

	got, err := storage.Get(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastUpdated.IsZero() {
		t.Error("Upsert must stamp LastUpdated")
	}
}
