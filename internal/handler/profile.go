package handler

import (
	"encoding/json"
	"log"
	"net/http"
)

// HandleMe returns the caller's full profile.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	userID := h.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	profile, ok, err := h.Stores.Profiles.Get(r.Context(), userID)
	if err != nil {
		log.Printf("fetch user error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

type profileUpdateRequest struct {
	Name            string `json:"name"`
	Image           string `json:"image"`
	Bio             string `json:"bio"`
	TargetAudience  string `json:"target_audience"`
	AIContext       string `json:"ai_context"`
	XHandle         string `json:"x_handle"`
	LeaderboardMode string `json:"leaderboard_mode"`
}

// HandleProfileUpdate writes the caller's profile fields.
func (h *Handler) HandleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	userID := h.userID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, _, err := h.Stores.Profiles.Get(r.Context(), userID)
	if err != nil {
		log.Printf("fetch user error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	profile.ID = userID
	profile.Name = req.Name
	profile.Image = req.Image
	profile.Bio = req.Bio
	profile.TargetAudience = req.TargetAudience
	profile.AIContext = req.AIContext
	profile.XHandle = req.XHandle
	profile.LeaderboardMode = req.LeaderboardMode

	if err := h.Stores.Profiles.Update(r.Context(), profile); err != nil {
		log.Printf("profile update error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
