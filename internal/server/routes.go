package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/piodois/CryptoVault/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Portfolios
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolioRoot)

	// Transactions
	mux.HandleFunc("/api/transactions/", s.handleTransactionDelete)

	// Watchlists
	mux.HandleFunc("/api/watchlists/", s.routeWatchlists)
	mux.HandleFunc("/api/watchlists", s.handleWatchlistRoot)

	// Alerts
	mux.HandleFunc("/api/alerts/check", s.handleAlertCheck)
	mux.HandleFunc("/api/alerts/", s.handleAlertByID)
	mux.HandleFunc("/api/alerts", s.handleAlertRoot)

	// Market data
	mux.HandleFunc("/api/market/top", s.handleMarketTop)
	mux.HandleFunc("/api/market/coins/", s.routeMarketCoins)
	mux.HandleFunc("/api/market/search", s.handleMarketSearch)
	mux.HandleFunc("/api/market/global", s.handleMarketGlobal)
	mux.HandleFunc("/api/market/status", s.handleMarketStatus)
}

// routePortfolios dispatches /api/portfolios/{id}/* to the appropriate handler.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	if path == "" {
		s.handlePortfolioRoot(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handlePortfolioByID(w, r, id)
	case "analytics":
		s.handlePortfolioAnalytics(w, r, id)
	case "transactions":
		s.handleTransactionAdd(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeWatchlists dispatches /api/watchlists/{id}/* to the appropriate handler.
func (s *Server) routeWatchlists(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/watchlists/")
	if path == "" {
		s.handleWatchlistRoot(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch {
	case subpath == "":
		s.handleWatchlistByID(w, r, id)
	case subpath == "coins":
		s.handleWatchlistCoins(w, r, id)
	case strings.HasPrefix(subpath, "coins/"):
		coinID := strings.TrimPrefix(subpath, "coins/")
		s.handleWatchlistCoin(w, r, id, coinID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeMarketCoins dispatches /api/market/coins/{id}/* to the appropriate handler.
func (s *Server) routeMarketCoins(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/market/coins/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "coin id is required in path")
		return
	}

	if strings.HasSuffix(path, "/history") {
		coinID := strings.TrimSuffix(path, "/history")
		s.handleMarketCoinHistory(w, r, coinID)
		return
	}

	s.handleMarketCoinDetails(w, r, path)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":          s.app.Config.Environment,
		"storage_path":         s.app.Config.Storage.Path,
		"logging_level":        s.app.Config.Logging.Level,
		"coingecko_configured": s.app.Config.Clients.CoinGecko.APIKey != "",
		"alert_schedule":       s.app.Config.Scheduler.AlertCheck,
		"refresh_schedule":     s.app.Config.Scheduler.MarketRefresh,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
