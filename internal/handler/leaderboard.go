package handler

import (
	"log"
	"net/http"
)

// HandleLeaderboard serves the ranked top posts.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	entries, err := h.Leaderboard.Top(r.Context())
	if err != nil {
		log.Printf("leaderboard fetch error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
