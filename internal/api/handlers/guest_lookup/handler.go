package guest_lookup

import (
	"errors"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
)

const (
	msgMissingParams = "требуются параметры mobile и number"
	msgNotFound      = "запись на приём не найдена"
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

// Handle GET /api/v1/guest/appointments/lookup?mobile=...&number=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	mobile := r.URL.Query().Get("mobile")
	number := r.URL.Query().Get("number")
	if mobile == "" || number == "" {
		h.logger.Warn("GET /guest/appointments/lookup - Missing mobile or number")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	apt, err := h.service.GuestLookup(r.Context(), mobile, number)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("GET /guest/appointments/lookup - Appointment not found: number=%s", number)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /guest/appointments/lookup - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgMissingParams)

		default:
			h.logger.Error("GET /guest/appointments/lookup - Failed to lookup appointment: number=%s, error=%v", number, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /guest/appointments/lookup - Appointment retrieved: number=%s", number)
	handlers.RespondJSON(w, http.StatusOK, apt)
}
