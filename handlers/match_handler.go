package handlers

import (
	"net/http"

	"campusmatch/middleware"
	"campusmatch/services"
)

type MatchHandler struct {
	matchService *services.MatchService
}

func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// MyMatches lists the caller's matches with partner profiles.
func (h *MatchHandler) MyMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.MyMatches(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches)})
}

// ListMatches is the admin view of all matches.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches)})
}

// CountMatches is the admin total.
func (h *MatchHandler) CountMatches(w http.ResponseWriter, r *http.Request) {
	n, err := h.matchService.Count(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}
