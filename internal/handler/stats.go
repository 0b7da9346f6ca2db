package handler

import (
	"log"
	"net/http"

	"tweetlab/internal/store"
)

// HandleStats serves the global simulation tally. Failures fall back to
// zero rather than erroring; the number is display-only.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	total, err := h.Stores.Stats.Value(r.Context(), store.StatKeySimulations)
	if err != nil {
		log.Printf("stats fetch error: %v", err)
		total = 0
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_simulations": total})
}
