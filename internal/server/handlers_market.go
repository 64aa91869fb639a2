package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/piodois/CryptoVault/internal/common"
)

// handleMarketTop handles GET /api/market/top?limit=N.
func (s *Server) handleMarketTop(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 || v > 100 {
			WriteError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = v
	}

	coins, err := s.app.MarketService.GetTopCoins(r.Context(), limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, coins)
}

// handleMarketCoinDetails handles GET /api/market/coins/{id}.
func (s *Server) handleMarketCoinDetails(w http.ResponseWriter, r *http.Request, coinID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	details, err := s.app.MarketService.GetCoinDetails(r.Context(), coinID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, details)
}

// handleMarketCoinHistory handles GET /api/market/coins/{id}/history?days=N.
func (s *Server) handleMarketCoinHistory(w http.ResponseWriter, r *http.Request, coinID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		v, err := strconv.Atoi(d)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "days must be a number")
			return
		}
		days = v
	}

	history, err := s.app.MarketService.GetCoinHistory(r.Context(), coinID, days)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// handleMarketSearch handles GET /api/market/search?query=Q.
func (s *Server) handleMarketSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	results, err := s.app.MarketService.SearchCoins(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, results)
}

// handleMarketStatus handles GET /api/market/status, a liveness summary for
// API consumers.
func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "active",
		"version":     common.GetVersion(),
		"uptime":      time.Since(s.app.StartupTime).Round(time.Second).String(),
		"last_update": time.Now().UTC(),
	})
}

// handleMarketGlobal handles GET /api/market/global.
func (s *Server) handleMarketGlobal(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	global, err := s.app.MarketService.GetGlobalData(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, global)
}
