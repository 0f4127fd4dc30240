package handlers

import (
	"net/http"

	"github.com/arenastack/tournament-registration/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register обрабатывает POST /tournaments/{tournamentID}/registrations.
// Вызов не идемпотентен без idempotency_key: повторная отправка без ключа
// создаёт вторую заявку.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegistrationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.registrationService.Register(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, jsonResponse{
		"success":         true,
		"registration_id": result.RegistrationID,
		"slots_remaining": result.SlotsRemaining,
	}, nil)
}
