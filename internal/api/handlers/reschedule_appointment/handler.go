package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	rescheduleAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи на приём"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDateOrTime    = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgNotFound             = "запись на приём не найдена"
	msgForbidden            = "доступ запрещен"
	msgCannotReschedule     = "запись не может быть перенесена в текущем статусе"
	msgRescheduleLimit      = "превышен лимит переносов записи"
	msgDoctorUnavailable    = "врач недоступен в выбранную дату"
	msgSlotNotInSchedule    = "слот отсутствует в расписании врача"
	msgSlotTaken            = "выбранный слот уже занят"
	msgBookingTimeout       = "не удалось забронировать слот, попробуйте ещё раз"
	msgConcurrentUpdate     = "запись была изменена параллельно, повторите запрос"
	msgMissingUserID        = "отсутствует ID пользователя"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(appointmentID, userID)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/reschedule - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleAppointment.ErrForbidden):
			h.logger.Warn("POST /appointments/{id}/reschedule - Access denied: appointment_id=%d, user_id=%d",
				appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleAppointment.ErrInvalidStatusTransition):
			h.logger.Warn("POST /appointments/{id}/reschedule - Invalid status: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, rescheduleAppointment.ErrRescheduleLimitExceeded):
			h.logger.Warn("POST /appointments/{id}/reschedule - Reschedule limit exceeded: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgRescheduleLimit)

		case errors.Is(err, rescheduleAppointment.ErrDoctorUnavailable):
			h.logger.Warn("POST /appointments/{id}/reschedule - Doctor unavailable: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgDoctorUnavailable)

		case errors.Is(err, rescheduleAppointment.ErrSlotNotInSchedule):
			h.logger.Warn("POST /appointments/{id}/reschedule - Slot not in schedule: appointment_id=%d", appointmentID)
			handlers.RespondUnprocessable(w, msgSlotNotInSchedule)

		case errors.Is(err, rescheduleAppointment.ErrSlotTaken):
			h.logger.Warn("POST /appointments/{id}/reschedule - Slot taken: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, rescheduleAppointment.ErrBookingTimeout):
			h.logger.Warn("POST /appointments/{id}/reschedule - Booking timeout: appointment_id=%d", appointmentID)
			handlers.RespondServiceUnavailable(w, msgBookingTimeout)

		case errors.Is(err, rescheduleAppointment.ErrStaleWrite):
			h.logger.Warn("POST /appointments/{id}/reschedule - Concurrent update: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /appointments/{id}/reschedule - Failed to reschedule: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/reschedule - Appointment rescheduled: old_id=%d, new_id=%d, user_id=%d",
		appointmentID, result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
