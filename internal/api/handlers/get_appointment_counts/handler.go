package get_appointment_counts

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/domain"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidDoctorID = "некорректный ID врача"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/appointments/counts?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := strconv.ParseInt(vars["doctorId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/appointments/counts - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	date := time.Now().Format(domain.DateFormat)
	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		if _, err := time.Parse(domain.DateFormat, rawDate); err != nil {
			h.logger.Warn("GET /doctors/{id}/appointments/counts - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		date = rawDate
	}

	result, err := h.service.GetCounts(r.Context(), doctorID, date)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /doctors/{id}/appointments/counts - Invalid input: doctor_id=%d, error=%v", doctorID, err)
			handlers.RespondBadRequest(w, msgInvalidDoctorID)

		default:
			h.logger.Error("GET /doctors/{id}/appointments/counts - Failed to get counts: doctor_id=%d, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/{id}/appointments/counts - Counts retrieved: doctor_id=%d, total=%d",
		doctorID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
