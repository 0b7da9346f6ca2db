package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type chatRequest struct {
	Message      string `json:"message"`
	TweetContext string `json:"tweetContext,omitempty"`
}

// HandleChat answers one assistant turn over plain HTTP.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.Chat.Reply(r.Context(), "", req.Message, req.TweetContext)
	if err != nil {
		log.Printf("chat error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get AI response. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Message      string `json:"message"`
	TweetContext string `json:"tweetContext,omitempty"`
}

type chatWSOutbound struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleChatWS keeps an assistant conversation open over a websocket.
// The transcript lives in memory for the connection lifetime.
func (h *Handler) HandleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = fmt.Sprintf("ws-%p", conn)
	}

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		log.Printf("chat ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if strings.TrimSpace(in.Message) == "" {
			_ = conn.WriteJSON(chatWSOutbound{Error: "Message is required"})
			continue
		}
		reply, err := h.Chat.Reply(r.Context(), sessionID, in.Message, in.TweetContext)
		if err != nil {
			log.Printf("chat ws error: %v", err)
			_ = conn.WriteJSON(chatWSOutbound{Error: "Failed to get AI response. Please try again."})
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait))
		if err := conn.WriteJSON(chatWSOutbound{Response: reply}); err != nil {
			return
		}
	}
}
