package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"campusmatch/middleware"
	"campusmatch/services"
	"campusmatch/utils/errors"
)

type DislikeHandler struct {
	dislikeService *services.DislikeService
}

func NewDislikeHandler(dislikeService *services.DislikeService) *DislikeHandler {
	return &DislikeHandler{dislikeService: dislikeService}
}

// AddDislike hides the target from the caller's feed.
func (h *DislikeHandler) AddDislike(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TargetID string `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.TargetID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	dislike, err := h.dislikeService.Add(r.Context(), middleware.UserID(r.Context()), input.TargetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dislike)
}

// RemoveDislike undoes a dislike after the 24h cooldown.
func (h *DislikeHandler) RemoveDislike(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["targetID"]
	if err := h.dislikeService.Remove(r.Context(), middleware.UserID(r.Context()), targetID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// RecentDislikes lists profiles the caller disliked in the last 24 hours.
func (h *DislikeHandler) RecentDislikes(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.dislikeService.MyRecent(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dislikes": profiles, "count": len(profiles)})
}
