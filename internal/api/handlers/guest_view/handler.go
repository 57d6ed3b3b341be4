package guest_view

import (
	"errors"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
)

const (
	msgMissingToken = "требуется параметр token"
	msgTokenInvalid = "токен доступа недействителен или истёк"
	msgNotFound     = "запись на приём не найдена"
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

// Handle GET /api/v1/guest/appointments/view?token=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.logger.Warn("GET /guest/appointments/view - Missing token")
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	apt, err := h.service.GuestView(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /guest/appointments/view - Token invalid or expired")
			handlers.RespondForbidden(w, msgTokenInvalid)

		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("GET /guest/appointments/view - Appointment not found")
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /guest/appointments/view - Failed to view appointment: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /guest/appointments/view - Appointment retrieved: id=%d", apt.ID)
	handlers.RespondJSON(w, http.StatusOK, apt)
}
