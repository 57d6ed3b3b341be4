package queue_check_in

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	checkIn "github.com/m04kA/HMS-AppointmentService/internal/usecase/check_in"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи на приём"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgNotFound             = "запись на приём не найдена"
	msgWrongDay             = "чек-ин возможен только в день приёма"
	msgInvalidStatus        = "запись не может быть зарегистрирована в текущем статусе"
	msgAlreadyCheckedIn     = "пациент уже зарегистрирован в очереди"
	msgConcurrentUpdate     = "запись была изменена параллельно, повторите запрос"
)

type Handler struct {
	useCase CheckInUseCase
	logger  Logger
}

func NewHandler(useCase CheckInUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/check-in
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/check-in - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	// Тело опционально: без него чек-ин с обычным приоритетом
	var req CheckInRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /appointments/{id}/check-in - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &checkIn.Request{
		AppointmentID: appointmentID,
		Priority:      req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkIn.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/check-in - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, checkIn.ErrWrongDay):
			h.logger.Warn("POST /appointments/{id}/check-in - Wrong day: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgWrongDay)

		case errors.Is(err, checkIn.ErrInvalidStatusTransition):
			h.logger.Warn("POST /appointments/{id}/check-in - Invalid status: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgInvalidStatus)

		case errors.Is(err, checkIn.ErrAlreadyCheckedIn):
			h.logger.Warn("POST /appointments/{id}/check-in - Already checked in: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgAlreadyCheckedIn)

		case errors.Is(err, checkIn.ErrStaleWrite):
			h.logger.Warn("POST /appointments/{id}/check-in - Concurrent update: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, checkIn.ErrInvalidInput):
			h.logger.Warn("POST /appointments/{id}/check-in - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /appointments/{id}/check-in - Failed to check in: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/check-in - Checked in successfully: appointment_id=%d, entry_id=%d, position=%d",
		appointmentID, result.EntryID, result.Position)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
