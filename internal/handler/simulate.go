package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"tweetlab/internal/llm"
	"tweetlab/internal/simulation"
)

const maxTweetRunes = 280

type simulateRequest struct {
	Tweet         string `json:"tweet"`
	ImageBase64   string `json:"imageBase64,omitempty"`
	ImageMimeType string `json:"imageMimeType,omitempty"`
}

func (req *simulateRequest) image() (*llm.ImagePart, error) {
	if req.ImageBase64 == "" || req.ImageMimeType == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("invalid image payload: %w", err)
	}
	return &llm.ImagePart{MIMEType: req.ImageMimeType, Data: data}, nil
}

// HandleSimulate is the whole-response mode: one request, one complete
// Prediction (or a degraded one with an error marker, still 200).
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Tweet = strings.TrimSpace(req.Tweet)
	if req.Tweet == "" {
		writeError(w, http.StatusBadRequest, "Tweet content is required")
		return
	}
	if utf8.RuneCountInString(req.Tweet) > maxTweetRunes {
		writeError(w, http.StatusBadRequest, "Tweet exceeds 280 characters")
		return
	}
	img, err := req.image()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.Orchestrator.Simulate(r.Context(), h.userID(r), simulation.TweetInput{Text: req.Tweet, Image: img})
	if err != nil {
		log.Printf("simulation error: %v", err)
		writeError(w, http.StatusInternalServerError, genericFailure)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleSimulateStream is the streaming mode: progress and completion
// are encoded as one SSE event each, terminated by a literal [DONE]
// sentinel. The length cap is deliberately absent here so long posts can
// be simulated.
func (h *Handler) HandleSimulateStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Tweet = strings.TrimSpace(req.Tweet)
	if req.Tweet == "" {
		writeError(w, http.StatusBadRequest, "Tweet content is required")
		return
	}
	img, err := req.image()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	emit := func(v any) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	p, err := h.Orchestrator.SimulateStream(r.Context(), h.userID(r), simulation.TweetInput{Text: req.Tweet, Image: img},
		func(partial string) {
			emit(map[string]any{"partial": partial})
		})
	if err != nil {
		// Headers are already out; the stream contract still terminates
		// cleanly with an error event and the sentinel.
		log.Printf("streaming simulation error: %v", err)
		emit(map[string]any{"complete": true, "analysis": map[string]string{"error": genericFailure}})
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
		return
	}

	emit(map[string]any{"complete": true, "analysis": p})
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
