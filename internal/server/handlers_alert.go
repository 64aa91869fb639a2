package server

import (
	"net/http"
	"strings"

	"github.com/piodois/CryptoVault/internal/interfaces"
)

// handleAlertRoot handles GET and POST /api/alerts.
func (s *Server) handleAlertRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		alerts, err := s.app.AlertService.GetUserAlerts(r.Context(), RequestUserID(r))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, alerts)
	case http.MethodPost:
		var input interfaces.CreateAlertInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		input.UserID = RequestUserID(r)

		alert, err := s.app.AlertService.CreateAlert(r.Context(), input)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, alert)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleAlertByID handles PATCH and DELETE /api/alerts/{id}.
func (s *Server) handleAlertByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var update interfaces.AlertUpdate
		if !DecodeJSON(w, r, &update) {
			return
		}

		alert, err := s.app.AlertService.UpdateAlert(r.Context(), id, RequestUserID(r), update)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, alert)
	case http.MethodDelete:
		if err := s.app.AlertService.DeleteAlert(r.Context(), id, RequestUserID(r)); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		RequireMethod(w, r, http.MethodPatch, http.MethodDelete)
	}
}

// handleAlertCheck handles POST /api/alerts/check, a manual evaluation run
// alongside the scheduled one.
func (s *Server) handleAlertCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	triggered, err := s.app.AlertService.CheckAlerts(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"triggered_count": len(triggered),
		"triggered":       triggered,
	})
}
