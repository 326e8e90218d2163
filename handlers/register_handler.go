package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"campusmatch/middleware"
	"campusmatch/services"
	"campusmatch/utils/errors"
)

// RegisterHandler exposes the multi-step signup session flow. These routes
// are public: the session ID is the only credential.
type RegisterHandler struct {
	registerService *services.RegisterService
}

func NewRegisterHandler(registerService *services.RegisterService) *RegisterHandler {
	return &RegisterHandler{registerService: registerService}
}

func (h *RegisterHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.registerService.Start(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"registration_id": session.RegistrationID,
		"current_step":    session.CurrentStep,
	})
}

func (h *RegisterHandler) Status(w http.ResponseWriter, r *http.Request) {
	step, err := h.registerService.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"current_step": step})
}

func (h *RegisterHandler) Data(w http.ResponseWriter, r *http.Request) {
	data, err := h.registerService.Data(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *RegisterHandler) SaveStep(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Step   int            `json:"step"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	session, err := h.registerService.SaveStep(r.Context(), mux.Vars(r)["id"], input.Step, input.Fields)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"current_step": session.CurrentStep})
}

func (h *RegisterHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.registerService.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}
