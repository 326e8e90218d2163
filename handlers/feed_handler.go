package handlers

import (
	"net/http"

	"campusmatch/middleware"
	"campusmatch/services"
)

type FeedHandler struct {
	feedService *services.FeedService
}

func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed returns the caller's next chunk of candidate profiles.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.feedService.GetChunk(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles, "count": len(profiles)})
}
