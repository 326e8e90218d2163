package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"campusmatch/middleware"
	"campusmatch/services"
	"campusmatch/utils/errors"
)

type CrushHandler struct {
	crushService *services.CrushService
}

func NewCrushHandler(crushService *services.CrushService) *CrushHandler {
	return &CrushHandler{crushService: crushService}
}

// AddCrush records a crush on the target. The response says whether a
// mutual match was formed.
func (h *CrushHandler) AddCrush(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TargetID string `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.TargetID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	result, err := h.crushService.Add(r.Context(), middleware.UserID(r.Context()), input.TargetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// CancelCrush withdraws a crush after the 24h cooldown.
func (h *CrushHandler) CancelCrush(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["targetID"]
	if err := h.crushService.Cancel(r.Context(), middleware.UserID(r.Context()), targetID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// MyCrushes lists the profiles the caller crushed on.
func (h *CrushHandler) MyCrushes(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.crushService.MyCrushes(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"crushes": profiles, "count": len(profiles)})
}

// InboundCount returns how many people have a crush on the caller.
func (h *CrushHandler) InboundCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.crushService.InboundCount(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// ListCrushes is the admin view of all crushes.
func (h *CrushHandler) ListCrushes(w http.ResponseWriter, r *http.Request) {
	crushes, err := h.crushService.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"crushes": crushes, "count": len(crushes)})
}

// CountCrushes is the admin total.
func (h *CrushHandler) CountCrushes(w http.ResponseWriter, r *http.Request) {
	n, err := h.crushService.Count(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}
