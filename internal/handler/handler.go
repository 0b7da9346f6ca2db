// Package handler exposes the service over plain JSON HTTP, an SSE
// stream for progressive simulation, and a websocket for the assistant
// chat.
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"tweetlab/internal/chat"
	"tweetlab/internal/identity"
	"tweetlab/internal/leaderboard"
	"tweetlab/internal/simulation"
	"tweetlab/internal/store"
)

// genericFailure is what callers see when the model invocation fails.
// Internal service detail never crosses this boundary.
const genericFailure = "Failed to simulate tweet. Please try again."

type Handler struct {
	Orchestrator *simulation.Orchestrator
	Chat         *chat.Service
	Stores       *store.Stores
	Identity     *identity.Resolver
	Leaderboard  *leaderboard.Service
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) userID(r *http.Request) string {
	if h == nil || h.Identity == nil {
		return ""
	}
	return h.Identity.FromRequest(r)
}
