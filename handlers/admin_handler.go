package handlers

import (
	"net/http"
	"strconv"

	"github.com/arenastack/tournament-registration/middleware"
	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/repositories"
	"github.com/arenastack/tournament-registration/services"
)

type AdminHandler struct {
	moderationService   services.ModerationService
	registrationService services.RegistrationService
	availabilityService services.AvailabilityService
	catalogService      services.CatalogService
}

func NewAdminHandler(
	moderationService services.ModerationService,
	registrationService services.RegistrationService,
	availabilityService services.AvailabilityService,
	catalogService services.CatalogService,
) *AdminHandler {
	return &AdminHandler{
		moderationService:   moderationService,
		registrationService: registrationService,
		availabilityService: availabilityService,
		catalogService:      catalogService,
	}
}

type statusUpdateRequest struct {
	Status models.RegistrationStatus `json:"status"`
	Reason *string                   `json:"reason"`
}

// UpdateStatus обрабатывает PATCH /admin/registrations/{registrationID}/status.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	registrationID, err := idParam(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	adminID, err := middleware.GetAdminIDFromContext(r.Context())
	if err != nil {
		forbiddenResponse(w, r, err.Error())
		return
	}

	var input statusUpdateRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.moderationService.UpdateRegistrationStatus(r.Context(), registrationID, input.Status, adminID, input.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success":    true,
		"old_status": result.OldStatus,
		"new_status": result.NewStatus,
	}, nil)
}

func (h *AdminHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.ListRegistrationsFilter{
		Limit:  toInt(q.Get("limit"), 50),
		Offset: toInt(q.Get("offset"), 0),
	}
	if tournamentIDStr := q.Get("tournament_id"); tournamentIDStr != "" {
		tournamentID, err := strconv.Atoi(tournamentIDStr)
		if err != nil || tournamentID <= 0 {
			badRequestResponse(w, r, errInvalidQueryParam("tournament_id"))
			return
		}
		filter.TournamentID = &tournamentID
	}
	if statusStr := q.Get("status"); statusStr != "" {
		status := models.RegistrationStatus(statusStr)
		if !status.Valid() {
			badRequestResponse(w, r, errInvalidQueryParam("status"))
			return
		}
		filter.Status = &status
	}

	registrations, err := h.registrationService.ListRegistrations(r.Context(), filter)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"registrations": registrations}, nil)
}

func (h *AdminHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID, err := idParam(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	registration, err := h.registrationService.GetRegistration(r.Context(), registrationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"registration": registration}, nil)
}

func (h *AdminHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	registrationID, err := idParam(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actions, err := h.moderationService.GetAuditTrail(r.Context(), registrationID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"actions": actions}, nil)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.availabilityService.GetDashboard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard, nil)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *AdminHandler) SetTournamentActive(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setActiveRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.catalogService.SetTournamentActive(r.Context(), tournamentID, input.Active); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"success": true, "active": input.Active}, nil)
}

func toInt(s string, def int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}
