package handler

import (
	"net/http"
	"strings"

	"tidyslot/internal/availability/service"
	"tidyslot/internal/availability/validator"
	httputil "tidyslot/pkg/http"
	"tidyslot/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// DefaultDurationHours applies when duration_hours is omitted.
const DefaultDurationHours = 2

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

type conflictResponse struct {
	Conflict bool `json:"conflict"`
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.RequiredQuery(r, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	duration, err := httputil.QueryInt(r, "duration_hours", DefaultDurationHours)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slots, err := h.service.GetAvailability(r.Context(), validator.AvailabilityQuery{
		Date:          date,
		DurationHours: duration,
		ProviderID:    strings.TrimSpace(r.URL.Query().Get("provider_id")),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, slots)
}

func (h *AvailabilityHandler) CheckConflict(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	duration, err := httputil.QueryInt(r, "duration_hours", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	conflict, err := h.service.CheckConflict(r.Context(), validator.ConflictQuery{
		ProviderID:       strings.TrimSpace(query.Get("provider_id")),
		Date:             strings.TrimSpace(query.Get("date")),
		Time:             strings.TrimSpace(query.Get("time")),
		DurationHours:    duration,
		ExcludeBookingID: strings.TrimSpace(query.Get("exclude_booking_id")),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, conflictResponse{Conflict: conflict})
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.GetAvailability)
	router.GET("/api/v1/availability/conflicts", h.CheckConflict)
}
