package server

import (
	"net/http"
	"strings"

	"github.com/piodois/CryptoVault/internal/interfaces"
)

// handlePortfolioRoot handles GET and POST /api/portfolios.
func (s *Server) handlePortfolioRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePortfolioList(w, r)
	case http.MethodPost:
		s.handlePortfolioCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.app.PortfolioService.GetUserPortfolios(r.Context(), RequestUserID(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, portfolios)
}

func (s *Server) handlePortfolioCreate(w http.ResponseWriter, r *http.Request) {
	var input interfaces.CreatePortfolioInput
	if !DecodeJSON(w, r, &input) {
		return
	}
	input.UserID = RequestUserID(r)

	portfolio, err := s.app.PortfolioService.CreatePortfolio(r.Context(), input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, portfolio)
}

// handlePortfolioByID handles GET and DELETE /api/portfolios/{id}.
func (s *Server) handlePortfolioByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		detail, err := s.app.PortfolioService.GetPortfolio(r.Context(), id, RequestUserID(r))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, detail)
	case http.MethodDelete:
		if err := s.app.PortfolioService.DeletePortfolio(r.Context(), id, RequestUserID(r)); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handlePortfolioAnalytics handles GET /api/portfolios/{id}/analytics.
func (s *Server) handlePortfolioAnalytics(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	// Ownership check before computing over the whole ledger.
	if _, err := s.app.Storage.Portfolios().GetForUser(r.Context(), id, RequestUserID(r)); err != nil {
		WriteServiceError(w, err)
		return
	}

	analytics, err := s.app.PortfolioService.Analytics(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, analytics)
}

// handleTransactionAdd handles POST /api/portfolios/{id}/transactions.
func (s *Server) handleTransactionAdd(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var input interfaces.AddTransactionInput
	if !DecodeJSON(w, r, &input) {
		return
	}
	input.PortfolioID = portfolioID
	input.UserID = RequestUserID(r)

	tx, err := s.app.PortfolioService.AddTransaction(r.Context(), input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}

// handleTransactionDelete handles DELETE /api/transactions/{id}.
func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	if err := s.app.PortfolioService.DeleteTransaction(r.Context(), id, RequestUserID(r)); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
