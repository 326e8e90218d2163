package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"campusmatch/middleware"
	"campusmatch/services"
	"campusmatch/utils/errors"
)

type ProposeHandler struct {
	proposeService *services.ProposeService
}

func NewProposeHandler(proposeService *services.ProposeService) *ProposeHandler {
	return &ProposeHandler{proposeService: proposeService}
}

// CreatePropose sends a match proposal to the target.
func (h *ProposeHandler) CreatePropose(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TargetID string `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.TargetID == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	propose, err := h.proposeService.Create(r.Context(), middleware.UserID(r.Context()), input.TargetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, propose)
}

// RespondPropose accepts or denies a pending proposal addressed to the
// caller.
func (h *ProposeHandler) RespondPropose(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	result, err := h.proposeService.Respond(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["id"], input.Action)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelPropose withdraws the caller's pending proposal after the 24h
// cooldown.
func (h *ProposeHandler) CancelPropose(w http.ResponseWriter, r *http.Request) {
	if err := h.proposeService.Cancel(r.Context(), middleware.UserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// SentProposes lists the caller's outgoing proposals.
func (h *ProposeHandler) SentProposes(w http.ResponseWriter, r *http.Request) {
	proposes, err := h.proposeService.ListSent(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"proposes": proposes, "count": len(proposes)})
}

// ReceivedProposes lists pending proposals awaiting the caller's answer.
func (h *ProposeHandler) ReceivedProposes(w http.ResponseWriter, r *http.Request) {
	proposes, err := h.proposeService.ListReceived(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"proposes": proposes, "count": len(proposes)})
}

// ListProposes is the admin view of all proposals.
func (h *ProposeHandler) ListProposes(w http.ResponseWriter, r *http.Request) {
	proposes, err := h.proposeService.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"proposes": proposes, "count": len(proposes)})
}

// CountProposes is the admin total.
func (h *ProposeHandler) CountProposes(w http.ResponseWriter, r *http.Request) {
	n, err := h.proposeService.Count(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}
