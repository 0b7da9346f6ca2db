package handler

import (
	"encoding/json"
	"log"
	"net/http"
)

const historyPageSize = 20

// HandleHistory serves a user's simulation history: GET lists the most
// recent entries, DELETE removes one by id. Both require a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		entries, err := h.Stores.History.ListByUser(r.Context(), userID, historyPageSize)
		if err != nil {
			log.Printf("history fetch error: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch history")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": entries})

	case http.MethodDelete:
		var req struct {
			ID int64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
			writeError(w, http.StatusBadRequest, "Missing id")
			return
		}
		if err := h.Stores.History.Delete(r.Context(), req.ID, userID); err != nil {
			log.Printf("history delete error: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to delete history")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or DELETE required")
	}
}
