package server

import (
	"net/http"

	"github.com/piodois/CryptoVault/internal/interfaces"
)

// handleWatchlistRoot handles GET and POST /api/watchlists.
func (s *Server) handleWatchlistRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		watchlists, err := s.app.WatchlistService.GetUserWatchlists(r.Context(), RequestUserID(r))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, watchlists)
	case http.MethodPost:
		var input interfaces.CreateWatchlistInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		input.UserID = RequestUserID(r)

		watchlist, err := s.app.WatchlistService.CreateWatchlist(r.Context(), input)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, watchlist)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistByID handles GET, PUT and DELETE /api/watchlists/{id}.
func (s *Server) handleWatchlistByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		watchlist, err := s.app.WatchlistService.GetWatchlist(r.Context(), id, RequestUserID(r))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, watchlist)
	case http.MethodPut:
		var input interfaces.UpdateWatchlistInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		input.WatchlistID = id
		input.UserID = RequestUserID(r)

		watchlist, err := s.app.WatchlistService.UpdateWatchlist(r.Context(), input)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, watchlist)
	case http.MethodDelete:
		if err := s.app.WatchlistService.DeleteWatchlist(r.Context(), id, RequestUserID(r)); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// handleWatchlistCoins handles GET (enriched view) and POST (add coin) on
// /api/watchlists/{id}/coins.
func (s *Server) handleWatchlistCoins(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		coins, err := s.app.WatchlistService.GetWatchlistCoins(r.Context(), id, RequestUserID(r))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, coins)
	case http.MethodPost:
		var body struct {
			CoinID string `json:"coin_id"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}

		watchlist, err := s.app.WatchlistService.AddCoin(r.Context(), id, body.CoinID, RequestUserID(r))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, watchlist)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistCoin handles DELETE /api/watchlists/{id}/coins/{coinID}.
func (s *Server) handleWatchlistCoin(w http.ResponseWriter, r *http.Request, id, coinID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	watchlist, err := s.app.WatchlistService.RemoveCoin(r.Context(), id, coinID, RequestUserID(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, watchlist)
}
