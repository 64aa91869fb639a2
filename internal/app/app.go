// Package app wires configuration, storage, clients and services into a
// running application.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piodois/CryptoVault/internal/clients/coingecko"
	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
	"github.com/piodois/CryptoVault/internal/services/alert"
	"github.com/piodois/CryptoVault/internal/services/market"
	"github.com/piodois/CryptoVault/internal/services/portfolio"
	"github.com/piodois/CryptoVault/internal/services/watchlist"
	"github.com/piodois/CryptoVault/internal/storage"
)

// App holds all initialized services and clients. It is the shared core used
// by cmd/cryptovault-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	MarketClient     interfaces.MarketClient
	PortfolioService interfaces.PortfolioService
	WatchlistService interfaces.WatchlistService
	AlertService     interfaces.AlertService
	MarketService    interfaces.MarketService
	StartupTime      time.Time

	scheduler *scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, the market client and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration: provided path, CRYPTOVAULT_CONFIG, then binary dir,
	// then the development fallback.
	if configPath == "" {
		configPath = os.Getenv("CRYPTOVAULT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "cryptovault.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/cryptovault.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	marketClient := coingecko.NewClient(config.Clients.CoinGecko.APIKey,
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithLogger(logger),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
	)

	portfolioService := portfolio.NewService(storageManager, marketClient, logger)
	watchlistService := watchlist.NewService(storageManager, marketClient, logger)
	alertService := alert.NewService(storageManager, marketClient, logger)
	marketService := market.NewService(storageManager, marketClient, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		MarketClient:     marketClient,
		PortfolioService: portfolioService,
		WatchlistService: watchlistService,
		AlertService:     alertService,
		MarketService:    marketService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartScheduler launches the cron-driven background jobs.
func (a *App) StartScheduler() error {
	s, err := newScheduler(a.Config.Scheduler, a.AlertService, a.MarketService, a.Logger)
	if err != nil {
		return err
	}
	a.scheduler = s
	a.scheduler.Start()
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
