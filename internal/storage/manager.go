// Package storage wires the concrete stores behind the StorageManager contract.
package storage

import (
	"fmt"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
	"github.com/piodois/CryptoVault/internal/storage/badger"
)

// Compile-time interface check
var _ interfaces.StorageManager = (*Manager)(nil)

// Manager owns the BadgerHold store and exposes the per-entity stores.
type Manager struct {
	store        *badger.Store
	portfolios   interfaces.PortfolioStore
	transactions interfaces.TransactionStore
	holdings     interfaces.HoldingStore
	watchlists   interfaces.WatchlistStore
	alerts       interfaces.AlertStore
	marketData   interfaces.MarketDataStore
}

// NewManager opens the store at the configured path and builds all stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &Manager{
		store:        store,
		portfolios:   badger.NewPortfolioStorage(store, logger),
		transactions: badger.NewTransactionStorage(store, logger),
		holdings:     badger.NewHoldingStorage(store, logger),
		watchlists:   badger.NewWatchlistStorage(store, logger),
		alerts:       badger.NewAlertStorage(store, logger),
		marketData:   badger.NewMarketStorage(store, logger),
	}, nil
}

func (m *Manager) Portfolios() interfaces.PortfolioStore     { return m.portfolios }
func (m *Manager) Transactions() interfaces.TransactionStore { return m.transactions }
func (m *Manager) Holdings() interfaces.HoldingStore         { return m.holdings }
func (m *Manager) Watchlists() interfaces.WatchlistStore     { return m.watchlists }
func (m *Manager) Alerts() interfaces.AlertStore             { return m.alerts }
func (m *Manager) MarketData() interfaces.MarketDataStore    { return m.marketData }

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}
