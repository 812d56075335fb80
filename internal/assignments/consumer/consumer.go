package consumer

import (
	"context"

	"tidyslot/internal/assignments/service"
	apperrors "tidyslot/pkg/errors"
	"tidyslot/pkg/kafka"
	"tidyslot/pkg/logger"
	"tidyslot/pkg/model"
)

// AutoAssignHandler turns auto-assign-requests messages into AutoAssign
// batches. Malformed payloads are permanent failures; rejected requests are
// business failures and are neither retried nor dead-lettered.
type AutoAssignHandler struct {
	service service.AssignmentService
	log     *logger.Logger
}

func NewAutoAssignHandler(service service.AssignmentService, log *logger.Logger) *AutoAssignHandler {
	return &AutoAssignHandler{
		service: service,
		log:     log,
	}
}

func (h *AutoAssignHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var req model.AutoAssignRequest
	if len(msg.Value) == 0 {
		return kafka.NewPermanentError("empty auto-assign request", kafka.ErrEmptyValue)
	}
	if err := msg.DecodeValue(&req); err != nil {
		return kafka.NewPermanentError("malformed auto-assign request", err).
			WithDetail("event_id", msg.GetEventID())
	}

	result, err := h.service.AutoAssign(ctx, req)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeValidation) || apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			return kafka.NewBusinessError("auto-assign request rejected", err).
				WithDetail("event_id", msg.GetEventID())
		}
		return kafka.NewTransientError("auto-assign batch failed", err)
	}

	h.log.Info("Auto-assign request processed",
		"event_id", msg.GetEventID(),
		"correlation_id", msg.GetCorrelationID(),
		"strategy", result.Strategy,
		"assigned", result.Assigned,
		"unassigned", len(result.Unassigned),
		"errors", len(result.Errors),
	)
	return nil
}
