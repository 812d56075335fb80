package handler

import (
	"net/http"

	"tidyslot/internal/assignments/service"
	httputil "tidyslot/pkg/http"
	"tidyslot/pkg/logger"
	"tidyslot/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AssignmentHandler struct {
	service service.AssignmentService
	log     *logger.Logger
}

func NewAssignmentHandler(service service.AssignmentService, log *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		log:     log,
	}
}

// AutoAssign accepts an empty body, which assigns every unassigned pending
// booking with the configured default strategy.
func (h *AssignmentHandler) AutoAssign(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AutoAssignRequest
	if err := httputil.DecodeJSON(r, &req, true); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.AutoAssign(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

func (h *AssignmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/assignments/auto", h.AutoAssign)
}
