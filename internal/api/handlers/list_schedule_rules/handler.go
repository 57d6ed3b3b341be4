package list_schedule_rules

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/service/schedule"
)

const (
	msgInvalidDoctorID = "некорректный ID врача"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/doctors/{doctorId}/schedules?activeOnly=true&date=YYYY-MM-DD
// С параметром date возвращает только правила, действующие на эту дату.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := strconv.ParseInt(vars["doctorId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/schedules - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	var result interface{}

	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		date, err := time.Parse(domain.DateFormat, rawDate)
		if err != nil {
			h.logger.Warn("GET /doctors/{id}/schedules - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		result, err = h.service.ListEffective(r.Context(), doctorID, date)
		if err != nil {
			h.respondServiceError(w, doctorID, err)
			return
		}
	} else {
		activeOnly := r.URL.Query().Get("activeOnly") == "true"
		result, err = h.service.ListByDoctor(r.Context(), doctorID, activeOnly)
		if err != nil {
			h.respondServiceError(w, doctorID, err)
			return
		}
	}

	h.logger.Info("GET /doctors/{id}/schedules - Rules retrieved successfully: doctor_id=%d", doctorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, doctorID int64, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidInput):
		h.logger.Warn("GET /doctors/{id}/schedules - Invalid input: doctor_id=%d, error=%v", doctorID, err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)

	default:
		h.logger.Error("GET /doctors/{id}/schedules - Failed to list rules: doctor_id=%d, error=%v", doctorID, err)
		handlers.RespondInternalError(w)
	}
}
