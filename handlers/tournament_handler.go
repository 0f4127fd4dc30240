package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/arenastack/tournament-registration/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	catalogService      services.CatalogService
	availabilityService services.AvailabilityService
}

func NewTournamentHandler(catalogService services.CatalogService, availabilityService services.AvailabilityService) *TournamentHandler {
	return &TournamentHandler{
		catalogService:      catalogService,
		availabilityService: availabilityService,
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("all") != "true"
	tournaments, err := h.catalogService.ListTournaments(r.Context(), onlyActive)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil)
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, err := h.catalogService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// Availability безопасен для опроса: чтение без побочных эффектов.
func (h *TournamentHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	availability, err := h.availabilityService.GetSlotAvailability(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availability, nil)
}

func (h *TournamentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stats, err := h.availabilityService.GetTournamentStats(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats, nil)
}

func idParam(r *http.Request, name string) (int, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
