package server

import (
	"net/http"

	"tweetlab/internal/handler"
	"tweetlab/internal/server/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/simulate", h.HandleSimulate)
	mux.HandleFunc("/api/simulate/stream", h.HandleSimulateStream)
	mux.HandleFunc("/api/chat", h.HandleChat)
	mux.HandleFunc("/api/chat/ws", h.HandleChatWS)
	mux.HandleFunc("/api/history", h.HandleHistory)
	mux.HandleFunc("/api/stats", h.HandleStats)
	mux.HandleFunc("/api/leaderboard", h.HandleLeaderboard)
	mux.HandleFunc("/api/user/me", h.HandleMe)
	mux.HandleFunc("/api/user/update", h.HandleProfileUpdate)

	return middleware.CORS(mux)
}
