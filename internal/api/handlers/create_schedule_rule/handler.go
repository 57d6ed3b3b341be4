package create_schedule_rule

import (
	"errors"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule"
	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRule        = "некорректное правило расписания"
	msgDoctorNotFound     = "врач не найден"
	msgScheduleConflict   = "правило пересекается с действующим расписанием врача"
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

// Handle POST /api/v1/schedules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /schedules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	rule, err := h.service.AddRule(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /schedules - Invalid rule: doctor_id=%d, error=%v", req.DoctorID, err)
			handlers.RespondBadRequest(w, msgInvalidRule)

		case errors.Is(err, schedule.ErrDoctorNotFound):
			h.logger.Warn("POST /schedules - Doctor not found: doctor_id=%d", req.DoctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, schedule.ErrScheduleConflict):
			h.logger.Warn("POST /schedules - Schedule conflict: doctor_id=%d", req.DoctorID)
			handlers.RespondConflict(w, msgScheduleConflict)

		default:
			h.logger.Error("POST /schedules - Failed to create rule: doctor_id=%d, error=%v", req.DoctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /schedules - Rule created successfully: rule_id=%d, doctor_id=%d", rule.ID, rule.DoctorID)
	handlers.RespondJSON(w, http.StatusCreated, rule)
}
