package book_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/HMS-AppointmentService/internal/api/handlers"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	bookAppointment "github.com/m04kA/HMS-AppointmentService/internal/usecase/book_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgDoctorNotFound     = "врач не найден"
	msgDoctorUnavailable  = "врач недоступен в выбранную дату"
	msgSlotNotInSchedule  = "слот отсутствует в расписании врача"
	msgSlotTaken          = "выбранный слот уже занят"
	msgBookingTimeout     = "не удалось забронировать слот, попробуйте ещё раз"
	msgOtpExpired         = "OTP сессия истекла, запросите новый код"
	msgOtpMismatch        = "номер телефона не подтверждён"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments (пациенты) и POST /api/v1/guest/appointments (гости).
// На защищённом маршруте ID пациента берётся из контекста, на гостевом
// бронирование требует подтверждённой OTP сессии.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// ID пациента присутствует только на защищённом маршруте
	patientID, _ := middleware.GetUserID(r.Context())

	useCaseReq, err := req.ToUseCaseRequest(patientID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, bookAppointment.ErrDoctorNotFound):
			h.logger.Warn("POST /appointments - Doctor not found: doctor_id=%d", req.DoctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, bookAppointment.ErrDoctorUnavailable):
			h.logger.Warn("POST /appointments - Doctor unavailable: doctor_id=%d, date=%s", req.DoctorID, req.Date)
			handlers.RespondConflict(w, msgDoctorUnavailable)

		case errors.Is(err, bookAppointment.ErrSlotNotInSchedule):
			h.logger.Warn("POST /appointments - Slot not in schedule: doctor_id=%d, slot=%s", req.DoctorID, req.SlotStart)
			handlers.RespondUnprocessable(w, msgSlotNotInSchedule)

		case errors.Is(err, bookAppointment.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: doctor_id=%d, slot=%s", req.DoctorID, req.SlotStart)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, bookAppointment.ErrBookingTimeout):
			h.logger.Warn("POST /appointments - Booking timeout: doctor_id=%d, slot=%s", req.DoctorID, req.SlotStart)
			handlers.RespondServiceUnavailable(w, msgBookingTimeout)

		case errors.Is(err, bookAppointment.ErrOtpExpired):
			h.logger.Warn("POST /appointments - Otp session expired")
			handlers.RespondGone(w, msgOtpExpired)

		case errors.Is(err, bookAppointment.ErrOtpMismatch):
			h.logger.Warn("POST /appointments - Otp verification mismatch")
			handlers.RespondUnauthorized(w, msgOtpMismatch)

		case errors.Is(err, bookAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /appointments - Failed to book appointment: doctor_id=%d, error=%v", req.DoctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment booked successfully: id=%d, number=%s, doctor_id=%d",
		result.ID, result.AppointmentNumber, result.DoctorID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
