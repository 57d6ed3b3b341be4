package deactivate_schedule_rule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule"
)

const (
	msgInvalidRuleID = "некорректный ID правила расписания"
	msgNotFound      = "правило расписания не найдено"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/schedules/{ruleId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ruleID, err := strconv.ParseInt(vars["ruleId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /schedules/{id} - Invalid rule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	if err := h.service.Deactivate(r.Context(), ruleID); err != nil {
		switch {
		case errors.Is(err, schedule.ErrRuleNotFound):
			h.logger.Warn("DELETE /schedules/{id} - Rule not found: rule_id=%d", ruleID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("DELETE /schedules/{id} - Invalid input: rule_id=%d, error=%v", ruleID, err)
			handlers.RespondBadRequest(w, msgInvalidRuleID)

		default:
			h.logger.Error("DELETE /schedules/{id} - Failed to deactivate rule: rule_id=%d, error=%v", ruleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /schedules/{id} - Rule deactivated successfully: rule_id=%d", ruleID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
